// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"seedfast/dataorch/internal/catalog"
	"seedfast/dataorch/internal/gateway"
	"seedfast/dataorch/internal/tools"
)

const wrapUpPrompt = "You have used all available turns and cannot call any more tools. " +
	"Answer the question now using only the results gathered so far, " +
	"mention the IDs of the rows you used and state clearly what is still unknown."

// mapPreamble lists the sub-agents and the decomposition schema.
func mapPreamble(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that answers questions by delegating sub-questions to sub-agents.\n")
	b.WriteString("Sub-agents are specialized in answering questions from a specific dataset.\n")
	b.WriteString("Sub-agents do not have access to data that they do not specialize in.\n\n")
	b.WriteString("You have access to the following sub-agents:\n")
	b.WriteString(subAgentList(c))
	b.WriteString("\n\n")
	b.WriteString("Respond with a JSON object map with a key being the name of the sub-agent and a value being the sub-question to ask the sub-agent. ")
	b.WriteString("Every sub-agent must receive a non-empty sub-question and no other keys are allowed.\n")

	if schema, err := json.MarshalIndent(c.JSONSchema(), "", "  "); err == nil {
		b.WriteString("The object must match this JSON schema:\n")
		b.Write(schema)
		b.WriteString("\n")
	}
	return b.String()
}

// subAgentList renders one `- "name": "description"` line per sub-agent.
func subAgentList(c *catalog.Catalog) string {
	lines := make([]string, len(c.Agents))
	for i, a := range c.Agents {
		lines[i] = fmt.Sprintf("- \"%s\": \"%s\"", a.Name, a.Description)
	}
	return strings.Join(lines, "\n")
}

// queryPreamble binds a domain agent to its table, tools and query dialect.
func queryPreamble(sub catalog.SubAgent, d gateway.Dialect, set *tools.Set) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful assistant that can answer questions from the %s table.\n", sub.Table)
	fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(sub.TableContext))

	b.WriteString("You have access to tools for database operations:\n")
	for _, t := range set.Tools() {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
	}
	fmt.Fprintf(&b, "\nUse the %s tool to retrieve data from the %s table.\n\n", tools.SelectToolName, sub.Table)

	b.WriteString("IMPORTANT: If a query fails with a syntax error or other issue, the tool will return an error message instead of failing. ")
	b.WriteString("Read the error message carefully and correct your query syntax before trying again. Common issues include:\n")
	b.WriteString("- Missing quotes around string values\n")
	b.WriteString("- Incorrect parentheses matching\n")
	fmt.Fprintf(&b, "- Invalid %s syntax\n\n", d.Name)

	fmt.Fprintf(&b, "Use %s operator in WHERE clause to partial match on string values.\n\n", d.Contains)

	fmt.Fprintf(&b, "The tools connect to a %s database.", d.Name)
	if len(d.Docs) > 0 {
		fmt.Fprintf(&b, " See the query syntax here %s.", strings.Join(d.Docs, ", "))
	}
	b.WriteString("\n\nMention the IDs of which rows were used to generate the response.\n")
	return b.String()
}

// reducePreamble embeds the sub-answers, separated by blank lines.
func reducePreamble(answers []string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that can answer questions based on the data provided below.\n")
	b.WriteString("Use only the provided data, but use your own knowledge to analyze and determine what it means ")
	b.WriteString("and come up with conclusions that would be useful to a business decision maker.\n\n")
	b.WriteString(strings.Join(answers, "\n\n"))
	b.WriteString("\n")
	return b.String()
}
