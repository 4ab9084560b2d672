package services

import (
	"context"
	"errors"
	"testing"
)

type recordingPublisher struct {
	mirrored []int64
	deleted  []int64
	err      error
}

func (p *recordingPublisher) PublishMirror(_ context.Context, id int64) error {
	p.mirrored = append(p.mirrored, id)
	return p.err
}

func (p *recordingPublisher) PublishDelete(_ context.Context, id int64) error {
	p.deleted = append(p.deleted, id)
	return p.err
}

func TestNewTransactionService(t *testing.T) {
	service := NewTransactionService(nil, nil)

	if service == nil {
		t.Fatal("NewTransactionService should return a non-nil service")
	}
	if service.storage != nil {
		t.Error("storage should be nil when passed nil")
	}
	if service.publisher != nil {
		t.Error("publisher should be nil when passed nil")
	}
}

func TestPublishMirrorWithoutPublisher(t *testing.T) {
	service := NewTransactionService(nil, nil)

	// Without a broker the write path still succeeds; the worker's
	// pending scan covers the mirror later.
	if err := service.publishMirror(context.Background(), 1); err != nil {
		t.Errorf("publishMirror without publisher: %v", err)
	}
	if err := service.publishDelete(context.Background(), 1); err != nil {
		t.Errorf("publishDelete without publisher: %v", err)
	}
}

func TestPublishMirrorForwardsToPublisher(t *testing.T) {
	pub := &recordingPublisher{}
	service := NewTransactionService(nil, pub)

	if err := service.publishMirror(context.Background(), 7); err != nil {
		t.Fatalf("publishMirror: %v", err)
	}
	if err := service.publishDelete(context.Background(), 9); err != nil {
		t.Fatalf("publishDelete: %v", err)
	}

	if len(pub.mirrored) != 1 || pub.mirrored[0] != 7 {
		t.Errorf("mirrored = %v, want [7]", pub.mirrored)
	}
	if len(pub.deleted) != 1 || pub.deleted[0] != 9 {
		t.Errorf("deleted = %v, want [9]", pub.deleted)
	}
}

func TestPublishMirrorPropagatesError(t *testing.T) {
	wantErr := errors.New("broker down")
	pub := &recordingPublisher{err: wantErr}
	service := NewTransactionService(nil, pub)

	if err := service.publishMirror(context.Background(), 1); !errors.Is(err, wantErr) {
		t.Errorf("publishMirror error = %v, want %v", err, wantErr)
	}
}
