package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tis100/proto"
)

func TestDamagedIsInert(t *testing.T) {
	d := NewDamaged(1, 2)
	x, y := d.Pos()
	assert.Equal(t, 1, x)
	assert.Equal(t, 2, y)
	assert.Equal(t, KindDamaged, d.Kind())
	assert.Equal(t, Idle, d.Activity())
	d.Step() // must not panic
	_, _, ok := d.Offer()
	assert.False(t, ok)
	_, ok = d.Requesting()
	assert.False(t, ok)
	assert.Nil(t, d.Halted())
}

func TestKindAndActivityStrings(t *testing.T) {
	assert.Equal(t, "T21", KindT21.String())
	assert.Equal(t, "damaged", KindDamaged.String())
	assert.Equal(t, "run", Run.String())
	assert.Equal(t, "write", Write.String())
}

func TestBaseNeighborWiring(t *testing.T) {
	a := NewDamaged(0, 0)
	b := NewDamaged(1, 0)
	link(a, b, proto.Right)
	assert.True(t, a.Neighbor(proto.Right) == Node(b))
	assert.True(t, b.Neighbor(proto.Left) == Node(a))
	assert.Nil(t, a.Neighbor(proto.Up))
}
