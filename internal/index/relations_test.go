package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srclens/srclens/internal/config"
)

// Test Plan for the model relationship graph:
// - Every relationship descriptor becomes a directed edge
// - Outgoing and incoming edge queries agree
// - Targets never seen as models still appear as vertices

func TestModelGraph_EdgesFromDescriptors(t *testing.T) {
	t.Parallel()

	root := newTestWorkspace(t)
	writeFixture(t, root, "src/OrderItem.java", `@Entity
public class OrderItem {
    @ManyToOne
    private Order order;

    @ManyToOne
    private Product product;
}
`)
	m := initializedManager(t, root)
	g := BuildModelGraph(m)

	out := g.Outgoing("OrderItem")
	require.Len(t, out, 2)
	assert.Equal(t, "Order", out[0].To)
	assert.Equal(t, "ManyToOne", out[0].Kind)
	assert.Equal(t, "Product", out[1].To)

	in := g.Incoming("Order")
	require.Len(t, in, 1)
	assert.Equal(t, "OrderItem", in[0].From)

	// Weak references: Order is a vertex even though no file declares it.
	assert.Contains(t, g.Models(), "Order")
	assert.Contains(t, g.Models(), "OrderItem")
}

func TestModelGraph_PythonForeignKeys(t *testing.T) {
	t.Parallel()

	root := newTestWorkspace(t)
	m := initializedManager(t, root)
	g := BuildModelGraph(m)

	// api/users.py declares User with a ForeignKey("teams.id") column.
	out := g.Outgoing("User")
	require.Len(t, out, 1)
	assert.Equal(t, "teams", out[0].To)
	assert.Equal(t, "ForeignKey", out[0].Kind)
}

func TestModelGraph_EmptyWorkspace(t *testing.T) {
	t.Parallel()

	m := NewManager(config.Default(), nil)
	defer m.Dispose()

	g := BuildModelGraph(m)
	assert.Empty(t, g.Models())
	assert.Empty(t, g.Edges())
	assert.Empty(t, g.Outgoing("Anything"))
}
