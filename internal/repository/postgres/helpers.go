package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
)

// Query limits
const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

var timeNow = func() time.Time { return time.Now().UTC() }

// expectRow turns a write that matched nothing into NotFound. Rows hidden
// by row level security also land here.
func expectRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return errors.NotFound(entity, id)
	}
	return nil
}

func orderBy(sort repository.SortOrder, nameCol, updatedCol string) string {
	if sort == repository.SortByUpdated {
		return fmt.Sprintf(" ORDER BY %s DESC, %s", updatedCol, nameCol)
	}
	return fmt.Sprintf(" ORDER BY %s", nameCol)
}

func limitOffset(limit, offset int) string {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	s := fmt.Sprintf(" LIMIT %d", limit)
	if offset > 0 {
		s += fmt.Sprintf(" OFFSET %d", offset)
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// placeholders returns "($1, $2, ...), ($n+1, ...)" for rows of width columns.
func placeholders(rows, width int) string {
	var b strings.Builder
	n := 1
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := 0; j < width; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}
