package chat_test

import (
	"testing"

	"github.com/okonma/valet/pkg/chats/chat"
	"github.com/okonma/valet/pkg/chats/message"
	"github.com/okonma/valet/pkg/chats/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPreservesOrder(t *testing.T) {
	c := chat.New()
	c.Append(message.Human("one"))
	c.Append(message.AI("two"), message.Human("three"))

	require.Equal(t, 3, c.Len())
	assert.Equal(t, "one", c.At(0).Content)
	assert.Equal(t, "two", c.At(1).Content)
	assert.Equal(t, "three", c.At(2).Content)
}

func TestLast(t *testing.T) {
	c := chat.New()

	_, ok := c.Last()
	assert.False(t, ok)

	c.Append(message.Human("hi"), message.AI("hello"))

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, role.AI, last.Role)
	assert.Equal(t, "hello", last.Content)
}

func TestMessagesReturnsCopy(t *testing.T) {
	c := chat.New(message.Human("hi"))

	msgs := c.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "hi", c.At(0).Content)
}

func TestEachStopsEarly(t *testing.T) {
	c := chat.New(message.Human("a"), message.AI("b"), message.Human("c"))

	var seen int
	c.Each(func(i int, _ message.Message) bool {
		seen++
		return i < 1
	})

	assert.Equal(t, 2, seen)
}

func TestClear(t *testing.T) {
	c := chat.New(message.Human("a"), message.AI("b"))
	c.Clear()

	assert.Equal(t, 0, c.Len())

	c.Append(message.Human("again"))
	assert.Equal(t, 1, c.Len())
}
