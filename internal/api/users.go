package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// usersPage страничный ответ /users
type usersPage struct {
	Data []model.User `json:"data"`
	Meta PageMeta     `json:"meta"`
}

// GetUsersAll выкачивает всех пользователей с заданной ролью, постранично
func (c *Client) GetUsersAll(ctx context.Context, role model.UserRole) ([]model.User, error) {
	return FetchAllPages(ctx, c.logger, "users", func(ctx context.Context, page int) (Page[model.User], error) {
		query := url.Values{
			"role": {string(role)},
			"page": {strconv.Itoa(page)},
		}
		raw, err := c.Get(ctx, "/users", query)
		if err != nil {
			return Page[model.User]{}, err
		}

		var p usersPage
		if err := json.Unmarshal(raw, &p); err != nil {
			return Page[model.User]{}, fmt.Errorf("decode users page: %w", err)
		}
		return Page[model.User]{Items: p.Data, Meta: p.Meta}, nil
	})
}

// GetStudentsAll выкачивает всех студентов
func (c *Client) GetStudentsAll(ctx context.Context) ([]model.User, error) {
	return c.GetUsersAll(ctx, model.RoleStudent)
}

// Роли, чьи пользователи могут быть назначены преподавателями занятий
var assignableRoles = []model.UserRole{model.RoleTeacher, model.RoleModerator, model.RoleAdmin}

// GetAssignableTeachers собирает единый список пользователей, которых можно
// назначить на занятие. Три ролевых запроса выполняются параллельно — порядок
// их завершения не гарантирован, детерминизм даёт итоговое слияние:
// дедупликация по id и сортировка имён с учётом локали.
func (c *Client) GetAssignableTeachers(ctx context.Context) ([]model.User, error) {
	results := make([][]model.User, len(assignableRoles))

	g, gctx := errgroup.WithContext(ctx)
	for i, role := range assignableRoles {
		i, role := i, role
		g.Go(func() error {
			users, err := c.GetUsersAll(gctx, role)
			if err != nil {
				return fmt.Errorf("role %s: %w", role, err)
			}
			results[i] = users
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get assignable teachers: %w", err)
	}

	seen := make(map[int64]bool)
	var merged []model.User
	for _, users := range results {
		for _, u := range users {
			if seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			merged = append(merged, u)
		}
	}

	collator := collate.New(language.Russian)
	sort.SliceStable(merged, func(i, j int) bool {
		return collator.CompareString(merged[i].FullName(), merged[j].FullName()) < 0
	})

	return merged, nil
}

// GetUserByTelegramID возвращает пользователя платформы по Telegram ID
// (nil если аккаунт не привязан)
func (c *Client) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := url.Values{"telegram_id": {strconv.FormatInt(telegramID, 10)}}
	raw, err := c.Get(ctx, "/users/by-telegram", query)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}
