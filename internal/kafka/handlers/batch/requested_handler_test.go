package batch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/batchpix/image-pipeline/internal/model"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

type fakeService struct {
	req model.BatchRequest
	err error
}

func (s *fakeService) Run(_ context.Context, req model.BatchRequest) (model.Summary, error) {
	s.req = req
	return model.Summary{RunID: req.ID, Attempted: 2, Succeeded: 2}, s.err
}

func TestHandle(t *testing.T) {
	id := uuid.New()
	valid, err := json.Marshal(model.BatchRequest{
		ID:        id,
		InputDir:  "/data/in",
		OutputDir: "/data/out",
		Profile:   "stress",
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		payload []byte
		svcErr  error
		wantErr bool
	}{
		{"valid request", valid, nil, false},
		{"malformed json", []byte("{nope"), nil, true},
		{"missing directories", []byte(`{"profile":"default"}`), nil, true},
		{"service failure", valid, errors.New("cannot read input directory"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.svcErr}
			h := NewRequestedHandler(svc)

			err := h.Handle(context.Background(), kafka.Message{Value: tt.payload})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if svc.req.ID != id {
				t.Errorf("request ID %s, want %s", svc.req.ID, id)
			}
			if svc.req.Profile != "stress" {
				t.Errorf("profile %q, want stress", svc.req.Profile)
			}
		})
	}
}

func TestHandleAssignsRunID(t *testing.T) {
	payload := []byte(`{"input_dir":"/in","output_dir":"/out"}`)
	svc := &fakeService{}
	h := NewRequestedHandler(svc)

	if err := h.Handle(context.Background(), kafka.Message{Value: payload}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if svc.req.ID == uuid.Nil {
		t.Error("expected a run ID to be assigned")
	}
}
