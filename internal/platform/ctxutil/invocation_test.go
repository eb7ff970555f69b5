package ctxutil

import (
	"context"
	"reflect"
	"testing"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); got != nil {
		t.Fatalf("bare context: want=nil got=%v", got)
	}
	ctx := WithInvocation(context.Background(), Invocation{Origin: OriginCLI, RequestID: "r1", Operation: "dashctl stats"})
	want := []any{"origin", "cli", "request_id", "r1", "operation", "dashctl stats"}
	if got := LogFields(ctx); !reflect.DeepEqual(got, want) {
		t.Fatalf("fields: want=%v got=%v", want, got)
	}
	inv, ok := InvocationFrom(ctx)
	if !ok || inv.TraceID != "" || inv.Origin != OriginCLI {
		t.Fatalf("InvocationFrom: got=%+v ok=%v", inv, ok)
	}
}
