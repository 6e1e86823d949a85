package translator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/valpere/figtrans/internal"
)

// Memory is a translation cache consulted before calling a service.
type Memory interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error
}

// LanguageChecker reports whether text is written in lang.
type LanguageChecker interface {
	Matches(text, lang string) (bool, error)
}

// UnitOptions configure TranslateUnits.
type UnitOptions struct {
	SourceLang string
	TargetLang string
	Memory     Memory
	Checker    LanguageChecker
	Logger     *slog.Logger
}

// UnitsResult is the output of a translation pass over extracted units.
type UnitsResult struct {
	Requests []internal.ApplyRequest
	Cached   int
	Failed   []string
	Warnings []string
}

// TranslateUnits translates every unit in order, one request at a time, and
// pairs the results into apply requests. Units whose translation fails are
// reported and left out. Blank units pass through unchanged.
func TranslateUnits(ctx context.Context, svc TranslationService, cfg ServiceConfig, units []internal.TextUnit, opts UnitOptions) (*UnitsResult, error) {
	if opts.TargetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	res := &UnitsResult{}
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if strings.TrimSpace(u.Text) == "" {
			res.Requests = append(res.Requests, internal.NewApplyRequest(u, u.Text))
			continue
		}

		if opts.Memory != nil {
			cached, found, err := opts.Memory.GetCachedTranslation(ctx, u.Text, opts.SourceLang, opts.TargetLang)
			if err != nil {
				log.Warn("translation memory lookup failed", "unit", u.ID, "error", err)
			} else if found {
				res.Requests = append(res.Requests, internal.NewApplyRequest(u, cached))
				res.Cached++
				continue
			}
		}

		result, err := svc.Translate(ctx, cfg, TranslateRequest{
			Text:       u.Text,
			SourceLang: opts.SourceLang,
			TargetLang: opts.TargetLang,
		})
		if err != nil || result.Error != "" {
			msg := ""
			if result != nil {
				msg = result.Error
			}
			if msg == "" && err != nil {
				msg = err.Error()
			}
			res.Failed = append(res.Failed, fmt.Sprintf("%s: %s", u.ID, msg))
			log.Warn("translation failed", "unit", u.ID, "service", svc.Name(), "error", msg)
			continue
		}
		log.Debug("unit translated", "unit", u.ID, "service", svc.Name(), "latency", result.Latency)

		if opts.Checker != nil {
			if ok, err := opts.Checker.Matches(result.TranslatedText, opts.TargetLang); !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", u.ID, err))
			}
		}

		if opts.Memory != nil {
			if err := opts.Memory.SaveToMemory(ctx, u.Text, opts.SourceLang, opts.TargetLang, result.TranslatedText, svc.Name()); err != nil {
				log.Warn("failed to save translation memory", "unit", u.ID, "error", err)
			}
		}

		res.Requests = append(res.Requests, internal.NewApplyRequest(u, result.TranslatedText))
	}
	return res, nil
}
