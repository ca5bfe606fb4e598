package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/trialfinder/internal/model"
	"github.com/jjenkins/trialfinder/internal/service"
	"github.com/jjenkins/trialfinder/internal/store"
	"github.com/jjenkins/trialfinder/internal/templates"
	"github.com/rs/zerolog"
)

// Searcher runs one search
type Searcher interface {
	Search(ctx context.Context, criteria model.Criteria) (*model.SearchResult, error)
}

func criteriaFromForm(c *fiber.Ctx) model.Criteria {
	return model.Criteria{
		Condition:      c.FormValue("condition"),
		Keyword:        c.FormValue("keyword"),
		Location:       c.FormValue("location"),
		RecruitingOnly: c.FormValue("recruiting") != "",
	}.Trimmed()
}

func SearchHandler(searcher Searcher, sessions *store.SessionStore, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := currentSession(c, sessions)
		criteria := criteriaFromForm(c)

		result, err := searcher.Search(c.UserContext(), criteria)
		if err != nil {
			status, msg := searchErrorMessage(err)
			log.Warn().Err(err).Int("status", status).Msg("search failed")
			return render(c, status, templates.Search(templates.SearchPage{
				Criteria: criteria,
				Error:    msg,
			}))
		}

		rows := sess.SetResult(result)

		// HTMX requests only need the results block
		if c.Get("HX-Request") == "true" {
			return render(c, fiber.StatusOK, templates.Results(result, rows))
		}

		return render(c, fiber.StatusOK, templates.Search(templates.SearchPage{
			Criteria: criteria,
			Result:   result,
			Rows:     rows,
		}))
	}
}

// searchErrorMessage maps a search error to a status code and user message
func searchErrorMessage(err error) (int, string) {
	if errors.Is(err, service.ErrEmptyCriteria) {
		return fiber.StatusBadRequest, "疾患名・キーワード・地域のいずれかを入力してください。"
	}
	if se, ok := service.AsStatusError(err); ok {
		return fiber.StatusBadGateway, fmt.Sprintf("%s の検索に失敗しました (HTTP %d)。", se.Service, se.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout, "検索がタイムアウトしました。時間をおいて再度お試しください。"
	}
	return fiber.StatusInternalServerError, "検索中にエラーが発生しました。"
}
