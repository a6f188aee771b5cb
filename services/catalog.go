package services

import (
	"errors"
	"log"

	"xnrt-rewards-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CatalogService manages the static task/achievement catalog (admin only)
// and seeds the built-in content at boot.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// SeedContent inserts built-in tasks and achievements if missing.
// Idempotent: matched by slug/code, existing rows are left alone.
func (s *CatalogService) SeedContent() error {
	for _, t := range models.TaskSeeds {
		t.Slug = slug.Make(t.Title)
		var existing models.Task
		err := s.DB.Where("slug = ?", t.Slug).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			t.IsActive = true
			if err := s.DB.Create(&t).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	for _, a := range models.AchievementSeeds {
		var existing models.Achievement
		err := s.DB.Where("code = ?", a.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.DB.Create(&a).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	log.Println("📦 Catalog seeded (tasks + achievements)")
	return nil
}

// --- Admin Handlers ---

// CreateTask adds a new task; the slug is derived from the title.
func (s *CatalogService) CreateTask(c *fiber.Ctx) error {
	var req struct {
		Title       string                `json:"title"`
		Category    models.MetricCategory `json:"category"`
		XPReward    int64                 `json:"xp_reward"`
		XNRTReward  float64               `json:"xnrt_reward"`
		MaxProgress int64                 `json:"max_progress"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return fail(c, validationf("title is required"))
	}
	if req.MaxProgress < 1 {
		return fail(c, validationf("max_progress must be at least 1"))
	}
	valid := false
	for _, cat := range models.MetricCategories {
		if cat == req.Category {
			valid = true
			break
		}
	}
	if !valid {
		return fail(c, validationf("unknown category %q", req.Category))
	}

	task := models.Task{
		Slug:        slug.Make(req.Title),
		Title:       req.Title,
		Category:    req.Category,
		XPReward:    req.XPReward,
		XNRTReward:  req.XNRTReward,
		MaxProgress: req.MaxProgress,
		IsActive:    true,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		log.Printf("DB Error creating task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// SetTaskActive toggles a task in or out of circulation. Existing UserTask
// rows are untouched; inactive tasks just stop being evaluated.
func (s *CatalogService) SetTaskActive(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	res := s.DB.Model(&models.Task{}).Where("id = ?", id).Update("is_active", req.IsActive)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	if res.RowsAffected == 0 {
		return fail(c, notFound("task", id))
	}
	return c.JSON(fiber.Map{"message": "Task updated", "task_id": id, "is_active": req.IsActive})
}

// ListTasks returns the whole catalog, active or not.
func (s *CatalogService) ListTasks(c *fiber.Ctx) error {
	var tasks []models.Task
	if err := s.DB.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tasks"})
	}
	return c.JSON(tasks)
}
