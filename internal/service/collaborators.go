package service

import "context"

// ─────────────────────────────────────────────────────────────
// Collaborator interfaces — the platform surfaces the core
// consumes but does not implement (share sheet, save dialog).
// ─────────────────────────────────────────────────────────────

// DeliveryTag reports how a file payload reached the user. Delivery
// is fire-and-forget: correctness never depends on acknowledgment.
type DeliveryTag string

const (
	DeliveryShared    DeliveryTag = "shared"
	DeliverySaved     DeliveryTag = "saved"
	DeliveryDismissed DeliveryTag = "dismissed"
)

// FileDeliverer hands a file payload to the user, via native share,
// clipboard or direct download — whichever the platform offers.
type FileDeliverer interface {
	Deliver(ctx context.Context, payload []byte, filename, contentType, title string) (DeliveryTag, error)
}

// MockDeliverer records deliveries for tests.
type MockDeliverer struct {
	Tag        DeliveryTag
	Err        error
	Deliveries []MockDelivery
}

// MockDelivery is one recorded Deliver invocation.
type MockDelivery struct {
	Payload     []byte
	Filename    string
	ContentType string
	Title       string
}

func (m *MockDeliverer) Deliver(_ context.Context, payload []byte, filename, contentType, title string) (DeliveryTag, error) {
	m.Deliveries = append(m.Deliveries, MockDelivery{
		Payload:     append([]byte(nil), payload...),
		Filename:    filename,
		ContentType: contentType,
		Title:       title,
	})
	if m.Err != nil {
		return "", m.Err
	}
	if m.Tag == "" {
		return DeliverySaved, nil
	}
	return m.Tag, nil
}
