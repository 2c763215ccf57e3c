package ws

import (
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PushIsNonBlocking(t *testing.T) {
	c := newClient("u1", nil, logging.NewNopLogger())

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, c.Push(registry.Event{Name: "x"}))
	}

	err := c.Push(registry.Event{Name: "overflow"})
	assert.ErrorIs(t, err, common.ErrDeliveryPushFailed)
}

func TestClient_PushAfterClose(t *testing.T) {
	c := newClient("u1", nil, logging.NewNopLogger())
	c.Close()
	c.Close()

	err := c.Push(registry.Event{Name: "x"})
	assert.ErrorIs(t, err, common.ErrDeliveryPushFailed)
}
