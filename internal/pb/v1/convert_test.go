package lockv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/lockable/internal/domain/lock"
)

// TestStateConversion checks both directions keep every field, including empty ones.
func TestStateConversion(t *testing.T) {
	t.Parallel()

	admin := domain.Actor{Hostname: "vote-01", Username: "registrar"}

	locked := &domain.State{
		Timestamp: time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC),
		Admin:     admin,
		LastActor: admin.Clone(),
		IsLocked:  true,
	}
	require.Equal(t, locked, StateFromDomain(locked).ToDomainState())

	fresh := domain.NewGuard(admin).Snapshot()
	response := StateFromDomain(fresh)
	require.Nil(t, response.GetTimestamp())
	require.Nil(t, response.GetLastActor())
	require.Equal(t, fresh, response.ToDomainState())

	require.Equal(t, new(LockStateResponse), StateFromDomain(nil))
	require.Nil(t, (*LockStateResponse)(nil).ToDomainState())
	require.Nil(t, (*Actor)(nil).ToDomainActor())
	require.Nil(t, ActorFromDomain(nil))
}

// TestCodec verifies the registered codec speaks plain JSON.
func TestCodec(t *testing.T) {
	t.Parallel()

	c := codec{}
	require.Equal(t, CodecName, c.Name())

	data, err := c.Marshal(&SetLockRequest{Actor: &Actor{Hostname: "vote-01", Username: "registrar"}})
	require.NoError(t, err)
	require.JSONEq(t, `{"actor":{"hostname":"vote-01","username":"registrar"}}`, string(data))

	var got SetLockRequest
	require.NoError(t, c.Unmarshal(data, &got))
	require.Equal(t, "registrar", got.GetActor().GetUsername())

	require.Error(t, c.Unmarshal([]byte("{"), &got))
}
