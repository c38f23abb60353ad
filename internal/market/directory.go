package market

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"market-bot/internal/models"
)

// Directory maps exchange symbols to company names. It is built once at
// startup and never mutated afterwards.
type Directory struct {
	symbolToName map[string]string
	nameToSymbol map[string]string
	order        []string // symbols in load order
	names        []string // lowercase company names, sorted
}

// NewDirectory builds a directory from a symbol→name mapping. Map entries
// are loaded in symbol order.
func NewDirectory(symbolToName map[string]string) *Directory {
	d := emptyDirectory()
	for _, sym := range sortedKeys(symbolToName) {
		d.add(sym, symbolToName[sym])
	}
	d.index()
	return d
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func emptyDirectory() *Directory {
	return &Directory{
		symbolToName: make(map[string]string),
		nameToSymbol: make(map[string]string),
	}
}

func (d *Directory) add(sym, name string) {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	if sym == "" {
		return
	}
	if _, seen := d.symbolToName[sym]; !seen {
		d.order = append(d.order, sym)
	}
	d.symbolToName[sym] = strings.TrimSpace(name)
}

// index derives the reverse mapping. If two symbols share a company name the
// one loaded last wins.
func (d *Directory) index() {
	for _, sym := range d.order {
		name := d.symbolToName[sym]
		if name == "" {
			continue
		}
		d.nameToSymbol[strings.ToLower(name)] = sym
	}
	d.names = make([]string, 0, len(d.nameToSymbol))
	for name := range d.nameToSymbol {
		d.names = append(d.names, name)
	}
	sort.Strings(d.names)
}

// LoadDirectory builds a directory from whatever shape the provider returned:
// a symbol→name dict (old style, may carry a "SYMBOL" header entry), or a list
// of records or (symbol, name) pairs. Unrecognized shapes yield an empty
// directory.
func LoadDirectory(raw any) *Directory {
	d := emptyDirectory()
	switch v := raw.(type) {
	case map[string]string:
		for _, sym := range sortedKeys(v) {
			if sym == "SYMBOL" {
				continue
			}
			d.add(sym, v[sym])
		}
	case map[string]any:
		for _, sym := range sortedKeys(v) {
			if sym == "SYMBOL" {
				continue
			}
			d.add(sym, stringOrEmpty(v[sym]))
		}
	case []models.RawRecord:
		for _, item := range v {
			d.addRecord(item)
		}
	case []map[string]any:
		for _, item := range v {
			d.addRecord(item)
		}
	case [][]string:
		for _, pair := range v {
			if len(pair) >= 2 {
				d.add(pair[0], pair[1])
			}
		}
	case []any:
		for _, item := range v {
			switch it := item.(type) {
			case map[string]any:
				d.addRecord(it)
			case models.RawRecord:
				d.addRecord(it)
			case []any:
				if len(it) >= 2 {
					d.add(stringOrEmpty(it[0]), stringOrEmpty(it[1]))
				}
			case []string:
				if len(it) >= 2 {
					d.add(it[0], it[1])
				}
			}
		}
	}
	d.index()
	return d
}

func (d *Directory) addRecord(item models.RawRecord) {
	sym := stringOrEmpty(item.First("symbol", "SYMBOL"))
	name := stringOrEmpty(item.First("name", "NAME", "NAME OF COMPANY"))
	d.add(sym, name)
}

func stringOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	return cast.ToString(v)
}

// Has reports whether sym is a known symbol. sym must already be uppercase.
func (d *Directory) Has(sym string) bool {
	if d == nil {
		return false
	}
	_, ok := d.symbolToName[sym]
	return ok
}

// Name returns the company name for sym, or "".
func (d *Directory) Name(sym string) string {
	if d == nil {
		return ""
	}
	return d.symbolToName[sym]
}

// Len returns the number of known symbols.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.symbolToName)
}

// Symbols returns all known symbols in sorted order.
func (d *Directory) Symbols() []string {
	if d == nil {
		return nil
	}
	return sortedKeys(d.symbolToName)
}

// SymbolForName returns the symbol registered for a lowercase company name.
func (d *Directory) SymbolForName(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	sym, ok := d.nameToSymbol[name]
	return sym, ok
}
