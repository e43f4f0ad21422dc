package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseWhen reads an absolute timestamp or a natural language expression
// such as "now", "yesterday 5pm" or "2 hours ago", relative to base.
func parseWhen(expr string, base time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}
	if strings.EqualFold(expr, "now") {
		return base.UTC(), nil
	}
	if t, err := model.ParseTimestamp(expr); err == nil {
		return t, nil
	}
	r, err := parser.Parse(expr, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand time %q", expr)
	}
	return r.Time.UTC(), nil
}
