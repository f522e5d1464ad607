// Package jsonl parses JSON Lines DataSources. This parser uses https://github.com/tidwall/gjson to process data, and supports Schema field names formatted as gjson paths.
package jsonl
