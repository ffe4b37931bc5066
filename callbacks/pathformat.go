package callbacks

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports a checkpoint path template that references a field
// which cannot be resolved from the epoch number or the metric map. It
// indicates a misconfigured template rather than a transient condition.
type FormatError struct {
	Template string
	Field    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("path template %q references unknown field %q", e.Template, e.Field)
}

// FormatPath resolves a checkpoint path template containing named
// placeholders such as {epoch} or {val_loss:.2f}. The epoch placeholder is
// 1-based (epoch index + 1); every key in metrics is available by name. A
// placeholder may carry a printf-style width/precision spec whose final
// letter selects the verb, e.g. {epoch:02d} or {val_loss:.4e}. Literal
// braces are written as {{ and }}.
//
// A placeholder naming a field that is neither "epoch" nor a metric key
// returns a *FormatError.
func FormatPath(template string, epoch int, metrics map[string]float64) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("path template %q has an unterminated placeholder", template)
			}
			placeholder := template[i+1 : i+end]
			i += end

			name, spec := placeholder, ""
			if colon := strings.IndexByte(placeholder, ':'); colon >= 0 {
				name, spec = placeholder[:colon], placeholder[colon+1:]
			}

			formatted, err := formatField(template, name, spec, epoch, metrics)
			if err != nil {
				return "", err
			}
			b.WriteString(formatted)
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("path template %q has an unmatched %q", template, "}")
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// formatField resolves one placeholder. The epoch field shadows a metric of
// the same name.
func formatField(template, name, spec string, epoch int, metrics map[string]float64) (string, error) {
	if name == "epoch" {
		return formatInt(template, name, spec, epoch+1)
	}
	value, ok := metrics[name]
	if !ok {
		return "", &FormatError{Template: template, Field: name}
	}
	return formatFloat(template, name, spec, value)
}

func formatInt(template, name, spec string, value int) (string, error) {
	if spec == "" {
		return strconv.Itoa(value), nil
	}
	switch spec[len(spec)-1] {
	case 'd', 'b', 'o', 'x', 'X':
		return fmt.Sprintf("%"+spec, value), nil
	case 'f', 'e', 'E', 'g', 'G':
		return fmt.Sprintf("%"+spec, float64(value)), nil
	default:
		return "", fmt.Errorf("path template %q field %q has unsupported format spec %q", template, name, spec)
	}
}

func formatFloat(template, name, spec string, value float64) (string, error) {
	if spec == "" {
		return strconv.FormatFloat(value, 'g', -1, 64), nil
	}
	switch spec[len(spec)-1] {
	case 'f', 'e', 'E', 'g', 'G':
		return fmt.Sprintf("%"+spec, value), nil
	case 'd', 'b', 'o', 'x', 'X':
		return fmt.Sprintf("%"+spec, int64(value)), nil
	default:
		return "", fmt.Errorf("path template %q field %q has unsupported format spec %q", template, name, spec)
	}
}
