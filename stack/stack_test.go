// stack_test.go - Simple test-cases for our generic stack.

package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEmpty: Test that the Empty() function works as expected.
func TestEmpty(t *testing.T) {
	s := New[string]()

	if !s.Empty() {
		t.Errorf("New stack is not empty!")
	}

	s.Push("33")

	if s.Empty() {
		t.Errorf("Despite storing a value the stack is still empty!")
	}
}

// TestEmptyPop: Test that pop'ing from an empty stack fails.
func TestEmptyPop(t *testing.T) {
	s := New[int]()

	_, err := s.Pop()
	if err == nil {
		t.Errorf("Expected an error popping from an empty stack!")
	}
}

// TestPushPop: Test that we can store/retrieve as we expect.
func TestPushPop(t *testing.T) {
	s := New[string]()

	s.Push("33")

	out, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, "33", out)
}

// TestPeekDoesNotRemove uses testify to check Peek leaves the stack intact.
func TestPeekDoesNotRemove(t *testing.T) {
	s := New[int]()
	s.Push(1)
	s.Push(2)

	top, err := s.Peek()
	assert.NoError(t, err)
	assert.Equal(t, 2, top)
	assert.Equal(t, 2, s.Len())
}

// TestLIFOOrder checks multiple pushes pop back out in reverse order.
func TestLIFOOrder(t *testing.T) {
	s := New[int]()
	for _, v := range []int{1, 2, 3} {
		s.Push(v)
	}

	var got []int
	for !s.Empty() {
		v, err := s.Pop()
		assert.NoError(t, err)
		got = append(got, v)
	}

	assert.Equal(t, []int{3, 2, 1}, got)
}
