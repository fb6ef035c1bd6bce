package rowstore

import (
	"strconv"
	"strings"

	"mealbook/internal/core"
)

// This file is the only place positional columns are mapped to named fields.
// Decoders return ok=false for blank tombstone rows and rows too damaged to
// carry an identity; numeric cells that fail to parse coerce to 0 so amount
// arithmetic never sees a parse artifact.

// User is one row of the user directory.
type User struct {
	Email             string
	Name              string
	PasswordHash      string
	Role              core.Role
	IsActive          bool
	PasswordChangedAt string
	CompanyName       string
}

// Notice is one row of the per-company notice board.
type Notice struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CompanyName string `json:"-"`
}

func DecodeUser(row []string) (User, bool) {
	email := cell(row, 0)
	if email == "" {
		return User{}, false
	}
	return User{
		Email:             email,
		Name:              cell(row, 1),
		PasswordHash:      cell(row, 2),
		Role:              core.Role(cell(row, 3)),
		IsActive:          parseBool(cell(row, 4)),
		PasswordChangedAt: cell(row, 5),
		CompanyName:       cell(row, 6),
	}, true
}

func EncodeUser(u User) []string {
	return []string{
		u.Email,
		u.Name,
		u.PasswordHash,
		string(u.Role),
		formatBool(u.IsActive),
		u.PasswordChangedAt,
		u.CompanyName,
	}
}

func DecodeMaster(row []string) (core.ExpenseMaster, bool) {
	id := cell(row, 0)
	if id == "" {
		return core.ExpenseMaster{}, false
	}
	date, err := core.ParseDate(cell(row, 1))
	if err != nil {
		return core.ExpenseMaster{}, false
	}
	return core.ExpenseMaster{
		ID:   id,
		Date: date,
		Registrant: core.Registrant{
			Name:  cell(row, 2),
			Email: cell(row, 3),
		},
		TotalAmount: parseAmount(cell(row, 4)),
		Memo:        cell(row, 5),
		IsCardUsage: parseBool(cell(row, 6)),
		CompanyName: cell(row, 7),
	}, true
}

func EncodeMaster(m core.ExpenseMaster) []string {
	return []string{
		m.ID,
		m.Date.String(),
		m.Registrant.Name,
		m.Registrant.Email,
		strconv.FormatInt(m.TotalAmount, 10),
		m.Memo,
		formatBool(m.IsCardUsage),
		m.CompanyName,
	}
}

func DecodeDetail(row []string) (core.ExpenseShare, bool) {
	masterID := cell(row, 0)
	if masterID == "" {
		return core.ExpenseShare{}, false
	}
	return core.ExpenseShare{
		MasterID:    masterID,
		UserName:    cell(row, 1),
		Amount:      parseAmount(cell(row, 2)),
		Menu:        cell(row, 3),
		CompanyName: cell(row, 4),
	}, true
}

func EncodeDetail(s core.ExpenseShare) []string {
	return []string{
		s.MasterID,
		s.UserName,
		strconv.FormatInt(s.Amount, 10),
		s.Menu,
		s.CompanyName,
	}
}

func DecodeMenu(row []string) (name, companyName string, ok bool) {
	name = cell(row, 0)
	if name == "" {
		return "", "", false
	}
	return name, cell(row, 1), true
}

func EncodeMenu(name, companyName string) []string {
	return []string{name, companyName}
}

func DecodeNotice(row []string) (Notice, bool) {
	title := cell(row, 1)
	if title == "" {
		return Notice{}, false
	}
	return Notice{
		Date:        cell(row, 0),
		Title:       title,
		Content:     cell(row, 2),
		CompanyName: cell(row, 3),
	}, true
}

func DecodeCompany(row []string) (string, bool) {
	name := cell(row, 0)
	return name, name != ""
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount reads an integer currency cell, tolerating thousands
// separators. Unparseable cells coerce to 0.
func parseAmount(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "TRUE")
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
