package db

import (
	"context"
	"testing"
)

func TestTxFromContext_Nil(t *testing.T) {
	tx := TxFromContext(context.Background())
	if tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), txKey, "not a tx")
	tx := TxFromContext(ctx)
	if tx != nil {
		t.Error("expected nil tx for wrong value type")
	}
}
