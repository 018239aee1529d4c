package orders

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"b1bridge/config"
	"b1bridge/diapi"
	"b1bridge/store"
)

func testLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func TestSession_LazyAndSingle(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	dials := 0
	com := &fakeCompany{}
	dial := func(cfg config.SAPConfig) (diapi.Company, error) {
		dials++
		return com, nil
	}
	sess := NewSession(config.Defaults(), store.NewDB(sqlDB), dial, testLogger())
	require.NotEmpty(t, sess.ID())
	require.Equal(t, 0, dials, "nothing opens before first use")

	c1, err := sess.Company()
	require.NoError(t, err)
	c2, err := sess.Company()
	require.NoError(t, err)
	require.Same(t, c1.(*fakeCompany), c2.(*fakeCompany))
	require.Equal(t, 1, dials, "one gateway session per unit of work")

	sql1, err := sess.SQL(context.Background())
	require.NoError(t, err)
	sql2, err := sess.SQL(context.Background())
	require.NoError(t, err)
	require.Same(t, sql1, sql2)

	sess.Close()
	require.True(t, com.disconnected)
}

func TestSession_CloseIdempotent(t *testing.T) {
	com := &fakeCompany{}
	dial := func(cfg config.SAPConfig) (diapi.Company, error) { return com, nil }
	sess := NewSession(config.Defaults(), nil, dial, testLogger())

	_, err := sess.Company()
	require.NoError(t, err)

	sess.Close()
	sess.Close()
	require.True(t, com.disconnected)

	_, err = sess.Company()
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = sess.SQL(context.Background())
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_CloseWithoutUse(t *testing.T) {
	dial := func(cfg config.SAPConfig) (diapi.Company, error) {
		t.Fatal("dial must not run")
		return nil, nil
	}
	sess := NewSession(config.Defaults(), nil, dial, testLogger())
	sess.Close()
}
