package reqctx

import (
	"context"
	"testing"
)

func TestWithRequestContext(t *testing.T) {
	ctx := WithRequestContext(context.Background(), "sess-1")
	rc := GetRequestContext(ctx)

	if rc.RequestID == "" || rc.RequestID == "unknown" {
		t.Errorf("Expected generated id, got '%s'", rc.RequestID)
	}
	if rc.SessionID != "sess-1" {
		t.Errorf("Expected session 'sess-1', got '%s'", rc.SessionID)
	}
}

func TestWithRequestContext_KeepsExistingID(t *testing.T) {
	outer := WithRequestContext(context.Background(), "")
	inner := WithRequestContext(outer, "sess-2")

	if GetRequestContext(outer).RequestID != GetRequestContext(inner).RequestID {
		t.Error("Expected run id to be preserved")
	}
	if GetRequestContext(inner).SessionID != "sess-2" {
		t.Error("Expected session id to be set")
	}
	if GetRequestContext(outer).SessionID != "" {
		t.Error("Expected outer context to be untouched")
	}
}

func TestGetRequestContext_Missing(t *testing.T) {
	if id := GetRequestContext(context.Background()).RequestID; id != "unknown" {
		t.Errorf("Expected 'unknown', got '%s'", id)
	}
}
