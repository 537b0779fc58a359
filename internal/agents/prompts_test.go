package agents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"seedfast/dataorch/internal/catalog"
	"seedfast/dataorch/internal/gateway"
)

func TestQueryPreamble(t *testing.T) {
	set, _, _ := newToolSet()
	sub := customersAgent()

	p := queryPreamble(sub, gateway.Dialect{Name: "PostgreSQL", Contains: "ILIKE", Docs: []string{"https://a", "https://b"}}, set)
	assert.True(t, strings.HasPrefix(p, "You are a helpful assistant that can answer questions from the customers table.\n"+sub.TableContext))
	assert.Contains(t, p, "- table_schema: echoes table_schema\n- select_query: echoes select_query\n")
	assert.Contains(t, p, "Use the select_query tool")
	assert.Contains(t, p, "Use ILIKE operator in WHERE clause")
	assert.Contains(t, p, "See the query syntax here https://a, https://b.")
	assert.Contains(t, p, "Mention the IDs of which rows were used")

	p = queryPreamble(sub, gateway.Dialect{Name: "SQLite", Contains: "LIKE"}, set)
	assert.NotContains(t, p, "See the query syntax")
}

func TestSubAgentList(t *testing.T) {
	c := &catalog.Catalog{Agents: []catalog.SubAgent{
		{Name: "b", Description: "second"},
		{Name: "a", Description: "first"},
	}}
	assert.Equal(t, "- \"b\": \"second\"\n- \"a\": \"first\"", subAgentList(c))
}

func TestReducePreamble(t *testing.T) {
	p := reducePreamble([]string{"one", "two"})
	assert.True(t, strings.HasSuffix(p, "one\n\ntwo\n"))
}
