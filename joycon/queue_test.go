package joycon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutQueueBounds(t *testing.T) {
	q := newOutQueue(3)
	require.NoError(t, q.push([]byte{1}))
	require.NoError(t, q.push([]byte{2}))
	require.NoError(t, q.push([]byte{3}))
	assert.ErrorIs(t, q.push([]byte{4}), ErrQueueFull)

	assert.Equal(t, []byte{1}, q.pop())
	require.NoError(t, q.push([]byte{4}), "pop frees a slot")

	assert.Equal(t, []byte{2}, q.pop())
	assert.Equal(t, []byte{3}, q.pop())
	assert.Equal(t, []byte{4}, q.pop())
	assert.Nil(t, q.pop())
}

func TestOutQueueFlush(t *testing.T) {
	q := newOutQueue(2)
	require.NoError(t, q.push([]byte{1}))
	require.NoError(t, q.push([]byte{2}))
	q.flush()
	assert.Zero(t, q.len())
	assert.Nil(t, q.pop())
	require.NoError(t, q.push([]byte{3}))
	assert.Equal(t, []byte{3}, q.pop())
}

func TestExpandShortButtonsHat(t *testing.T) {
	cases := []struct {
		hat  byte
		want uint32
	}{
		{0x00, MaskDpadUp},
		{0x03, MaskDpadDown | MaskDpadRight},
		{0x06, MaskDpadLeft},
		{0x08, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, expandShortButtons(0, tc.hat), "hat %#02x", tc.hat)
	}
	assert.Equal(t, MaskZR|MaskMinus, expandShortButtons(0x8040, 0x08))
}
