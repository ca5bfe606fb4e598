package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/jjenkins/trialfinder/internal/store"
	"github.com/jjenkins/trialfinder/internal/templates"
	"github.com/rs/zerolog"
)

// RowTranslator renders result rows into plain Japanese
type RowTranslator interface {
	CTGov(ctx context.Context, trial model.CTGovTrial) (model.RowTranslation, error)
	JRCT(ctx context.Context, trial model.JRCTTrial) (model.RowTranslation, error)
}

func TranslateRowHandler(translator RowTranslator, sessions *store.SessionStore, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		source, ok := model.ParseSource(c.Params("source"))
		if !ok {
			return render(c, fiber.StatusNotFound, templates.Fragment("error", "不明な検索元です。"))
		}
		index, err := c.ParamsInt("row")
		if err != nil || index < 0 {
			return render(c, fiber.StatusBadRequest, templates.Fragment("error", "行番号が不正です。"))
		}

		sess, ok := existingSession(c, sessions)
		if !ok {
			return render(c, fiber.StatusNotFound, templates.Fragment("error", "検索結果がありません。もう一度検索してください。"))
		}
		// rows belongs to result; a newer search gets its own set
		result, rows := sess.Snapshot()
		if result == nil {
			return render(c, fiber.StatusNotFound, templates.Fragment("error", "検索結果がありません。もう一度検索してください。"))
		}

		if cached, ok := rows.Get(source, index); ok {
			return render(c, fiber.StatusOK, templates.RowTranslation(cached))
		}

		var out model.RowTranslation
		switch source {
		case model.SourceJRCT:
			if index >= len(result.JRCT) {
				return render(c, fiber.StatusNotFound, templates.Fragment("error", "該当する行がありません。"))
			}
			out, err = translator.JRCT(c.UserContext(), result.JRCT[index])
		case model.SourceCTGov:
			if index >= len(result.CTGov) {
				return render(c, fiber.StatusNotFound, templates.Fragment("error", "該当する行がありません。"))
			}
			out, err = translator.CTGov(c.UserContext(), result.CTGov[index])
		}
		if err != nil {
			log.Warn().Err(err).Str("source", string(source)).Int("row", index).Msg("row translation failed")
			return render(c, fiber.StatusBadGateway, templates.Fragment("error", "翻訳に失敗しました。"))
		}

		rows.Set(source, index, out)
		return render(c, fiber.StatusOK, templates.RowTranslation(out))
	}
}
