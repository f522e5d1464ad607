package split

import (
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeMetadata(dir string, meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(dir, MetadataFileName), data, 0644)
}

// columnType tracks the narrowest type which can hold every non-empty value of a column
type columnType struct {
	seen       bool
	notInt     bool
	notFloat   bool
	notBoolean bool
}

func (c *columnType) observe(value string) {
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return
	}
	c.seen = true
	if !c.notInt {
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			c.notInt = true
		}
	}
	if !c.notFloat {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			c.notFloat = true
		}
	}
	if !c.notBoolean {
		if value != "true" && value != "false" {
			c.notBoolean = true
		}
	}
}

func (c *columnType) typeName() string {
	switch {
	case !c.seen:
		return "string"
	case !c.notInt:
		return "integer"
	case !c.notFloat:
		return "numeric"
	case !c.notBoolean:
		return "boolean"
	default:
		return "string"
	}
}
