package guest_test

import (
	"context"
	"testing"
	"time"

	"github.com/caffeineduck/r2d2/bridge"
	"github.com/caffeineduck/r2d2/guest"
	"github.com/caffeineduck/r2d2/internal/wasmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, module []byte, opts ...guest.ContextOption) *guest.Context {
	t.Helper()
	ctx := context.Background()
	ec, err := guest.NewContext(ctx, module, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { ec.Close(ctx) })
	return ec
}

func runOp(t *testing.T, ec *guest.Context, name string, args ...string) (*bridge.Result, error) {
	t.Helper()
	op, err := ec.Operation(name, args...)
	require.NoError(t, err)
	return op.Run(context.Background())
}

func TestMainRunsToCompletion(t *testing.T) {
	ec := newTestContext(t, wasmtest.Noop())
	res, err := runOp(t, ec, guest.OpMain)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Code)
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestMainProcExitZeroIsSuccess(t *testing.T) {
	ec := newTestContext(t, wasmtest.Exit(0))
	res, err := runOp(t, ec, guest.OpMain)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Code)
}

func TestMainPassesExitCodeThrough(t *testing.T) {
	ec := newTestContext(t, wasmtest.Exit(7))
	res, err := runOp(t, ec, guest.OpMain)

	require.NoError(t, err)
	assert.Equal(t, 7, res.Code)
}

func TestMainTrapIsAbort(t *testing.T) {
	ec := newTestContext(t, wasmtest.Trap())
	_, err := runOp(t, ec, guest.OpMain)

	require.Error(t, err)
	var abort *bridge.AbortError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, guest.OpMain, abort.Op)
}

func TestMainDeadlineStopsGuest(t *testing.T) {
	ec := newTestContext(t, wasmtest.Loop())
	op, err := ec.Operation(guest.OpMain)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := op.Run(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		var abort *bridge.AbortError
		assert.NotErrorAs(t, err, &abort, "a deliberate stop is not a crash")
		assert.Contains(t, err.Error(), "engine stopped")
	case <-time.After(10 * time.Second):
		t.Fatal("guest did not stop after deadline")
	}
}

func TestContextServesExactlyOneOperation(t *testing.T) {
	ec := newTestContext(t, wasmtest.Noop())

	_, err := runOp(t, ec, guest.OpMain)
	require.NoError(t, err)

	_, err = runOp(t, ec, guest.OpMain)
	assert.ErrorIs(t, err, bridge.ErrContextUsed)
}

func TestClosedContextRejectsRun(t *testing.T) {
	ctx := context.Background()
	ec, err := guest.NewContext(ctx, wasmtest.Noop())
	require.NoError(t, err)
	require.NoError(t, ec.Close(ctx))

	_, err = runOp(t, ec, guest.OpMain)
	assert.ErrorIs(t, err, bridge.ErrContextUsed)
}

func TestCloseTwiceIsSafe(t *testing.T) {
	ctx := context.Background()
	ec, err := guest.NewContext(ctx, wasmtest.Noop())
	require.NoError(t, err)

	require.NoError(t, ec.Close(ctx))
	require.NoError(t, ec.Close(ctx))
}

func TestUnknownOperation(t *testing.T) {
	ec := newTestContext(t, wasmtest.Noop())
	_, err := ec.Operation("wipe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}

func TestInvalidModuleFailsCompile(t *testing.T) {
	_, err := guest.NewContext(context.Background(), []byte("not wasm"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile engine module")
}

func TestUsageDecodesValue(t *testing.T) {
	ec := newTestContext(t, wasmtest.Print(`{"end":"e","payload_size":1234}`))
	res, err := runOp(t, ec, guest.OpUsage)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Code)
	assert.Contains(t, res.Output, "usage through e")
	assert.Contains(t, res.Output, "1.23 kB")
}

func TestUsageNonzeroExitIsFailure(t *testing.T) {
	ec := newTestContext(t, wasmtest.Exit(1))
	_, err := runOp(t, ec, guest.OpUsage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with code 1")

	var abort *bridge.AbortError
	assert.NotErrorAs(t, err, &abort)
}

func TestUsageRejectsGarbageOutput(t *testing.T) {
	ec := newTestContext(t, wasmtest.Noop())
	_, err := runOp(t, ec, guest.OpUsage)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode usage value")
}

func TestErrorOpReportsFailure(t *testing.T) {
	ec := newTestContext(t, wasmtest.Noop())
	_, err := runOp(t, ec, guest.OpError)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "something went wrong mate")

	// The diagnostic operation still consumes the context.
	_, err = runOp(t, ec, guest.OpMain)
	assert.ErrorIs(t, err, bridge.ErrContextUsed)
}

func TestInvokeEndToEnd(t *testing.T) {
	ec := newTestContext(t, wasmtest.Exit(7))
	op, err := ec.Operation(guest.OpMain)
	require.NoError(t, err)

	out := bridge.Invoke(context.Background(), op)
	assert.Equal(t, bridge.KindSuccess, out.Kind())
	assert.Equal(t, 7, out.ExitCode())
}
