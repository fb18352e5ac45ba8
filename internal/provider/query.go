// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import "strings"

// clause is a group of terms joined by one boolean operator.
type clause struct {
	terms []string
	op    string
}

// parseClauses splits free text into clauses. Plain terms become
// single-term clauses; an explicit AND/OR between two terms binds them
// into one clause. A leading or trailing operator is dropped.
func parseClauses(query string) []clause {
	var clauses []clause
	op := ""
	for _, term := range strings.Fields(query) {
		upper := strings.ToUpper(term)
		if upper == "AND" || upper == "OR" {
			op = upper
			continue
		}
		if op != "" && len(clauses) > 0 {
			last := clauses[len(clauses)-1]
			if len(last.terms) == 1 || last.op == op {
				last.terms = append(last.terms, term)
				last.op = op
				clauses[len(clauses)-1] = last
			} else {
				// Mixed operators: nest the previous group as a single term.
				clauses[len(clauses)-1] = clause{
					terms: []string{last.String(), term},
					op:    op,
				}
			}
			op = ""
			continue
		}
		op = ""
		clauses = append(clauses, clause{terms: []string{term}})
	}
	return clauses
}

func (c clause) String() string {
	if len(c.terms) == 1 {
		return c.terms[0]
	}
	return strings.Join(c.terms, " "+c.op+" ")
}

// ConstructQuery rewrites free text into the boolean form Semantic
// Scholar expects: clauses joined with AND, explicit AND/OR kept between
// the terms they connect. "deep learning OR vision" becomes
// "deep AND learning OR vision".
func ConstructQuery(query string) string {
	clauses := parseClauses(query)
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}
