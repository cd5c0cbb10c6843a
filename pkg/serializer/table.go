package serializer

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
)

const (
	emptyValue = "<empty>"
	nilValue   = "<nil>"
)

type row struct {
	key, value string
}

// writeTable prints data as FIELD/VALUE rows with flattened keys
// ("profile.accelerator", "versions[0].tag").
func writeTable(out io.Writer, data any) error {
	var rows []row
	flatten("", reflect.ValueOf(data), &rows)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.key, r.value)
	}
	return tw.Flush()
}

func flatten(prefix string, v reflect.Value, rows *[]row) {
	if !v.IsValid() {
		*rows = append(*rows, row{keyOr(prefix), nilValue})
		return
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			*rows = append(*rows, row{keyOr(prefix), nilValue})
			return
		}
		flatten(prefix, v.Elem(), rows)

	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, omitEmpty := fieldName(f)
			if name == "-" {
				continue
			}
			fv := v.Field(i)
			if omitEmpty && fv.IsZero() {
				continue
			}
			if f.Anonymous && name == f.Name {
				flatten(prefix, fv, rows)
				continue
			}
			flatten(join(prefix, name), fv, rows)
		}

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			*rows = append(*rows, row{keyOr(prefix), emptyValue})
			return
		}
		for i := range v.Len() {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i), rows)
		}

	case reflect.Map:
		if v.Len() == 0 {
			*rows = append(*rows, row{keyOr(prefix), emptyValue})
			return
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			flatten(join(prefix, fmt.Sprint(k.Interface())), v.MapIndex(k), rows)
		}

	default:
		*rows = append(*rows, row{keyOr(prefix), fmt.Sprint(v.Interface())})
	}
}

// fieldName prefers the json tag name so table keys match the json output.
func fieldName(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return f.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, strings.Contains(opts, "omitempty")
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func keyOr(prefix string) string {
	if prefix == "" {
		return "value"
	}
	return prefix
}
