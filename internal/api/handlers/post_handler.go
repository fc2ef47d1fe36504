package handlers

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

// parseCreation reads a post either from JSON or from multipart form fields.
func parseCreation(c *fiber.Ctx) (*transfer.PostCreation, []*multipart.FileHeader, error) {
	var pc transfer.PostCreation
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&pc); err != nil {
			return nil, nil, err
		}
		return &pc, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, err
	}

	pc.Title = c.FormValue("title")
	pc.Content = c.FormValue("content")
	if v := c.FormValue("publish_now"); v != "" {
		if pc.PublishNow, err = strconv.ParseBool(v); err != nil {
			return nil, nil, err
		}
	}
	if v := c.FormValue("scheduled_at"); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, err
		}
		pc.ScheduledAt = &at
	}
	if v := c.FormValue("social_account_ids"); v != "" {
		if err := json.Unmarshal([]byte(v), &pc.SocialAccountIDs); err != nil {
			return nil, nil, err
		}
	}
	if v := c.FormValue("media_urls"); v != "" {
		if err := json.Unmarshal([]byte(v), &pc.MediaURLs); err != nil {
			return nil, nil, err
		}
	}
	return &pc, form.File["files"], nil
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	pc, files, err := parseCreation(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "unable to parse post: "+err.Error())
	}

	post, err := h.s.Create(c.Context(), GetUserID(c), pc, files)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusCreated, post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.s.List(c.Context(), GetUserID(c), strings.ToUpper(c.Query("status")))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, posts)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	post, err := h.s.Get(c.Context(), GetUserID(c), postID)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, post)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	var req transfer.PostUpdate
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "unable to parse request")
	}

	post, err := h.s.Update(c.Context(), GetUserID(c), postID, &req)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, post)
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil || req.ScheduledAt.IsZero() {
		return fail(c, fiber.StatusBadRequest, "scheduled_at is required")
	}

	post, err := h.s.Schedule(c.Context(), GetUserID(c), postID, req.ScheduledAt)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, post)
}

func (h *PostHandler) ApprovePost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	post, err := h.s.Approve(c.Context(), GetUserID(c), postID)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, post)
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.s.PublishNow(c.Context(), GetUserID(c), postID); err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusAccepted, fiber.Map{"post_id": postID, "queued": true})
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.s.Remove(c.Context(), GetUserID(c), postID); err != nil {
		return handleError(c, err)
	}
	return success(c, fiber.StatusOK, nil)
}
