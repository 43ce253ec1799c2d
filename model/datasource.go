package model

import (
	"encoding/json"
	"strings"
)

// DBType names the kind of database a DataSource points at.
type DBType string

const (
	DBTypeMySQL     DBType = "mysql"
	DBTypePostgres  DBType = "postgres"
	DBTypeSQLite    DBType = "sqlite"
	DBTypeSQLServer DBType = "sqlserver"
	DBTypeUnknown   DBType = ""
)

var knownDBTypes = map[string]DBType{
	"mysql":      DBTypeMySQL,
	"postgres":   DBTypePostgres,
	"postgresql": DBTypePostgres,
	"sqlite":     DBTypeSQLite,
	"sqlserver":  DBTypeSQLServer,
	"mssql":      DBTypeSQLServer,
}

// ParseDBType normalizes aliases. Unrecognized values are returned as-is so
// they survive a round trip; Known reports whether they are supported.
func ParseDBType(s string) DBType {
	trimmed := strings.TrimSpace(s)
	if t, ok := knownDBTypes[strings.ToLower(trimmed)]; ok {
		return t
	}
	return DBType(trimmed)
}

func (t DBType) Known() bool {
	if t == DBTypeUnknown {
		return false
	}
	_, ok := knownDBTypes[string(t)]
	return ok
}

func (t DBType) String() string {
	if t == DBTypeUnknown {
		return "unknown"
	}
	return string(t)
}

func (t *DBType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseDBType(raw)
	return nil
}

// DataSource is a stored database connection profile.
type DataSource struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DBType      DBType  `json:"dbType"`
	Host        string  `json:"host"`
	Port        int     `json:"port"`
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	Database    *string `json:"database,omitempty"`
	ExtraParams *string `json:"extraParams,omitempty"`
}

func (ds DataSource) DatabaseName() string {
	if ds.Database == nil {
		return ""
	}
	return *ds.Database
}

func (ds DataSource) ExtraParamsValue() string {
	if ds.ExtraParams == nil {
		return ""
	}
	return *ds.ExtraParams
}

// Rule is a named piece of free text (a coding rule or a code sample) that
// can be attached to a code generation request.
type Rule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}
