// Package knowledge answers info and product questions from a static YAML answer file.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultFallback = "Tega žal ne vem zagotovo. Za dodatne informacije nas prosim pokličite."

// Base is the content of the knowledge file. Topics in the same file are read by the router.
type Base struct {
	Answers  map[string]string `yaml:"answers"`
	Products map[string]string `yaml:"products"`
	SoftSell string            `yaml:"soft_sell"`
	Fallback string            `yaml:"fallback"`
}

type Responder struct {
	base Base
}

func NewResponder(base Base) *Responder {
	if base.Answers == nil {
		base.Answers = map[string]string{}
	}
	if base.Products == nil {
		base.Products = map[string]string{}
	}
	if strings.TrimSpace(base.Fallback) == "" {
		base.Fallback = defaultFallback
	}
	return &Responder{base: base}
}

func Load(path string) (*Responder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	var base Base
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("parse knowledge file: %w", err)
	}
	return NewResponder(base), nil
}

// Answer returns the prepared answer for an info key. softSell appends a nudge
// towards booking. Unknown keys get the fallback text.
func (r *Responder) Answer(ctx context.Context, key string, softSell bool) (string, error) {
	answer, ok := r.base.Answers[key]
	if !ok {
		return r.base.Fallback, nil
	}
	answer = strings.TrimSpace(answer)
	if softSell && r.base.SoftSell != "" {
		answer += "\n\n" + strings.TrimSpace(r.base.SoftSell)
	}
	return answer, nil
}

// Product falls back to the general product answer for unknown categories.
func (r *Responder) Product(ctx context.Context, key string) (string, error) {
	if answer, ok := r.base.Products[key]; ok {
		return strings.TrimSpace(answer), nil
	}
	if answer, ok := r.base.Products["izdelki_splosno"]; ok {
		return strings.TrimSpace(answer), nil
	}
	return r.base.Fallback, nil
}

// General answers messages nothing else recognised.
func (r *Responder) General(ctx context.Context, message string) (string, error) {
	return strings.TrimSpace(r.base.Fallback), nil
}

// Missing returns the keys that have no prepared answer.
func (r *Responder) Missing(keys []string) []string {
	var out []string
	for _, k := range keys {
		if _, ok := r.base.Answers[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
