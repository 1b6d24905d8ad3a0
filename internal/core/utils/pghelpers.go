package utils

import "github.com/jackc/pgx/v5/pgtype"

// ToText converts a domain string to a pgtype.Text.
// An empty string is considered invalid (NULL).
func ToText(s string) pgtype.Text {
	return pgtype.Text{
		String: s,
		Valid:  s != "",
	}
}

// FromText converts a pgtype.Text to a domain string.
// A NULL value is converted to "".
func FromText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// FromBool converts a pgtype.Bool to a domain bool, NULL meaning false.
func FromBool(b pgtype.Bool) bool {
	return b.Valid && b.Bool
}
