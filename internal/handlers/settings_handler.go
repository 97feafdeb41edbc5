package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"misswong/essay-grader/internal/models"
	"misswong/essay-grader/internal/repositories"
)

type SettingsHandler struct {
	settingsRepo repositories.SettingsRepository
	validate     *validator.Validate
	defaultLevel string
	defaultModel string
}

func NewSettingsHandler(
	settingsRepo repositories.SettingsRepository,
	defaultLevel string,
	defaultModel string,
) *SettingsHandler {
	return &SettingsHandler{
		settingsRepo: settingsRepo,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		defaultLevel: defaultLevel,
		defaultModel: defaultModel,
	}
}

// HandleGet handles GET /settings. The API key itself is never echoed
// back, only whether one is configured.
func (h *SettingsHandler) HandleGet(c *fiber.Ctx) error {
	return c.JSON(models.SettingsResponse{
		APIKeySet: h.settingsRepo.Get(models.SettingAPIKey, "") != "",
		Level:     h.settingsRepo.Get(models.SettingLevel, h.defaultLevel),
		Model:     h.settingsRepo.Get(models.SettingModel, h.defaultModel),
	})
}

// HandleUpdate handles PUT /settings. Input errors abort before any key
// is written.
func (h *SettingsHandler) HandleUpdate(c *fiber.Ctx) error {
	var req models.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	req.APIKey = strings.TrimSpace(req.APIKey)
	req.Model = strings.TrimSpace(req.Model)

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}

	h.settingsRepo.Set(models.SettingAPIKey, req.APIKey)
	h.settingsRepo.Set(models.SettingLevel, req.Level)
	h.settingsRepo.Set(models.SettingModel, req.Model)

	return c.JSON(fiber.Map{
		"message": "Settings saved",
	})
}

func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid settings"
	}

	switch errs[0].Field() {
	case "APIKey":
		return "Please enter a valid API Key"
	case "Model":
		return "Please enter a Model ID"
	case "Level":
		return "Level must be Primary, Secondary or University"
	default:
		return "Invalid settings"
	}
}
