package service

import (
	"context"
	"strings"

	"github.com/sqlbridge/employee-mcp/internal/core/domain"
	"github.com/sqlbridge/employee-mcp/internal/core/port"
)

// ToolQueryEmployeeData is the single tool this server exposes.
const ToolQueryEmployeeData = "query_employee_data"

// descQueryEmployeeData is the prompt contract delivered to the calling
// agent. It documents the employee table and instructs the model on how to
// write queries; nothing in it is enforced server-side beyond the SELECT
// validation.
const descQueryEmployeeData = `Query employee data using SQL.

YOU (the model) should generate the SQL query based on the user's natural language request.

Database Schema:
- Table: public.employee
- Columns:
  * id (integer) - Employee ID
  * first_name (text) - First name
  * last_name (text) - Last name
  * email (text) - Email address
  * department (text) - Department name
  * salary (numeric) - Annual salary

Instructions for generating queries:
1. Analyze the user's natural language question
2. Generate appropriate SQL SELECT query
3. ALWAYS use "public.employee" as table name
4. Add LIMIT clause (max 100 rows unless user specifies)
5. Only SELECT queries allowed (no INSERT/UPDATE/DELETE)

Examples:

User: "Show all engineers"
SQL: SELECT * FROM public.employee WHERE department = 'Engineering' LIMIT 100

User: "Who makes over 100k?"
SQL: SELECT first_name, last_name, department, salary FROM public.employee WHERE salary > 100000 ORDER BY salary DESC LIMIT 100

User: "Average salary by department"
SQL: SELECT department, AVG(salary) as avg_salary, COUNT(*) as employee_count FROM public.employee GROUP BY department ORDER BY avg_salary DESC

User: "Top 5 earners"
SQL: SELECT first_name, last_name, department, salary FROM public.employee ORDER BY salary DESC LIMIT 5

Generate the SQL that best answers the user's question!`

const descSQLParam = "The SQL SELECT query you generated based on the user's request"

// Dispatcher implements port.ToolProvider for the one recognized tool. It is
// pure glue between the transport adapter and the query service; its only
// hard contract is that CallTool always returns a structured payload and
// never a fault.
type Dispatcher struct {
	query *QueryService
}

func NewDispatcher(query *QueryService) *Dispatcher {
	return &Dispatcher{query: query}
}

func (d *Dispatcher) ListTools() []port.ToolSpec {
	return []port.ToolSpec{
		{
			Name:        ToolQueryEmployeeData,
			Description: descQueryEmployeeData,
			Params: []port.ParamSpec{
				{Name: "sql", Description: descSQLParam, Required: true},
			},
		},
	}
}

func (d *Dispatcher) CallTool(ctx context.Context, name string, args map[string]any) any {
	if name != ToolQueryEmployeeData {
		return domain.UnknownTool{Name: name}
	}

	sql, _ := args["sql"].(string)
	if strings.TrimSpace(sql) == "" {
		return domain.Failed("sql is required", "")
	}

	ctx = WithToolName(ctx, name)
	return d.query.Run(ctx, sql)
}
