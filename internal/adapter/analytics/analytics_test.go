package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/eventbus"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type captureProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	closed  bool
}

func (p *captureProducer) ProduceSync(
	_ context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rs...)
	return kgo.ProduceResults{}
}

func (p *captureProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *captureProducer) Records() []*kgo.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*kgo.Record(nil), p.records...)
}

func (p *captureProducer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type stubEncoder struct{}

func (stubEncoder) Encode(any) ([]byte, error) {
	return []byte(`{"mirrored":true}`), nil
}

type failingEncoder struct{}

func (failingEncoder) Encode(any) ([]byte, error) {
	return nil, errors.New("encode failed")
}

func TestNewMirrorTooFewOpts(t *testing.T) {
	bus := eventbus.New()
	_, err := NewMirror(bus, EncoderOpt(stubEncoder{}))
	require.ErrorIs(t, err, ErrTooFewOpts)
}

func TestMirrorProducesBusEvents(t *testing.T) {
	bus := eventbus.New()
	producer := &captureProducer{}
	m, err := NewMirror(bus, ClientOpt(producer), EncoderOpt(stubEncoder{}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	bus.Publish(domain.ProductDeletedEvent("p-1"))

	require.Eventually(t, func() bool {
		return len(producer.Records()) == 1
	}, time.Second, 5*time.Millisecond)

	r := producer.Records()[0]
	assert.Equal(t, domain.TopicCatalog, string(r.Key))
	assert.NotEmpty(t, r.Value)

	m.Close()
	assert.True(t, producer.Closed())
}

func TestMirrorSkipsUnencodableEvents(t *testing.T) {
	bus := eventbus.New()
	producer := &captureProducer{}
	m, err := NewMirror(bus, ClientOpt(producer), EncoderOpt(failingEncoder{}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	bus.Publish(domain.ProductDeletedEvent("p-1"))
	bus.Publish(domain.ProductDeletedEvent("p-2"))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, producer.Records())

	m.Close()
}
