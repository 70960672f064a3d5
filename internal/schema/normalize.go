package schema

import (
	"strconv"
	"strings"
)

// TypeInfo is a backend-native column type: the base type name plus whatever
// length/precision/scale metadata the catalog declares. Nil means undeclared.
type TypeInfo struct {
	DataType  string
	Length    *int64
	Precision *int64
	Scale     *int64
}

// NormalizeType renders t in the canonical form used for cross-backend
// comparison:
//
//	character varying / varchar  -> varchar(N) or varchar
//	character / char / bpchar    -> char(N) or char
//	numeric / decimal            -> numeric(P,S), numeric(P) or numeric
//
// Every other type is returned as its native name, lower-cased.
func NormalizeType(t TypeInfo) string {
	base := strings.ToLower(strings.TrimSpace(t.DataType))

	switch base {
	case "character varying", "varchar":
		if t.Length != nil {
			return "varchar(" + itoa(*t.Length) + ")"
		}
		return "varchar"
	case "character", "char", "bpchar":
		if t.Length != nil {
			return "char(" + itoa(*t.Length) + ")"
		}
		return "char"
	case "numeric", "decimal":
		switch {
		case t.Precision != nil && t.Scale != nil:
			return "numeric(" + itoa(*t.Precision) + "," + itoa(*t.Scale) + ")"
		case t.Precision != nil:
			return "numeric(" + itoa(*t.Precision) + ")"
		}
		return "numeric"
	}
	return base
}

// ParseDeclaredType splits a declared type string such as "VARCHAR(50)" or
// "DECIMAL(10, 2)" into a TypeInfo. The single argument of a character type is
// its length; for anything else the arguments are precision and scale.
// Unparseable arguments are ignored and the whole string becomes the base name.
func ParseDeclaredType(declared string) TypeInfo {
	declared = strings.TrimSpace(declared)
	open := strings.IndexByte(declared, '(')
	if open < 0 || !strings.HasSuffix(declared, ")") {
		return TypeInfo{DataType: declared}
	}

	base := strings.TrimSpace(declared[:open])
	args := strings.Split(declared[open+1:len(declared)-1], ",")
	nums := make([]int64, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return TypeInfo{DataType: declared}
		}
		nums = append(nums, n)
	}

	t := TypeInfo{DataType: base}
	switch strings.ToLower(base) {
	case "character varying", "varchar", "character", "char", "bpchar":
		if len(nums) == 1 {
			t.Length = &nums[0]
		}
	default:
		if len(nums) >= 1 {
			t.Precision = &nums[0]
		}
		if len(nums) >= 2 {
			t.Scale = &nums[1]
		}
	}
	return t
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
