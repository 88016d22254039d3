package sqlite

import (
	"context"
	"strings"

	"github.com/goliatone/go-recordform/pkg/schema"
)

// Schema derives a form schema from the table's declared column types.
// Primary key columns are left out. Columns without NOT NULL are optional and
// nullable, so a row holding NULL can be submitted back unchanged.
//
// Type names map by affinity: BOOL* is boolean, *INT* is integer, a trailing
// "[]" or ARRAY is a text list, CHAR/CLOB/TEXT is text. Anything else stays
// opaque under its lower-cased type name.
func (s *Store) Schema(ctx context.Context, table string) (*schema.Schema, error) {
	infos, err := s.TableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	fields := make([]schema.Field, 0, len(infos))
	for _, info := range infos {
		if info.PrimaryKey {
			continue
		}
		t := columnType(info.DataType)
		if !info.NotNull {
			t = schema.Optional(schema.Nullable(t))
		}
		fields = append(fields, schema.Field{Name: info.Name, Type: t})
	}
	return schema.New(fields...)
}

func columnType(declared string) *schema.Type {
	upper := strings.ToUpper(strings.TrimSpace(declared))
	switch {
	case strings.HasSuffix(upper, "[]") || strings.Contains(upper, "ARRAY"):
		return schema.List(schema.Text())
	case strings.HasPrefix(upper, "BOOL"):
		return schema.Boolean()
	case strings.Contains(upper, "INT"):
		return schema.Integer()
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		return schema.Text()
	case upper == "":
		return schema.Opaque("blob")
	default:
		return schema.Opaque(strings.ToLower(upper))
	}
}
