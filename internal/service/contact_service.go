package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
)

var (
	ErrContactNotFound      = errors.New("contact submission not found")
	ErrContactStatusInvalid = errors.New("contact status must be one of new, read, replied, archived")
)

var contactStatuses = []string{
	db.ContactStatusNew,
	db.ContactStatusRead,
	db.ContactStatusReplied,
	db.ContactStatusArchived,
}

// ContactInput 是前台联系表单提交的字段。
type ContactInput struct {
	Name     string `validate:"required,max=120"`
	Email    string `validate:"required,email,max=255"`
	Subject  string `validate:"required,max=200"`
	Message  string `validate:"required,max=5000"`
	Budget   string `validate:"max=100"`
	Timeline string `validate:"max=100"`
}

// ContactFilter 用于后台筛选提交记录。
type ContactFilter struct {
	Status  string
	Page    int
	PerPage int
}

// ContactListResult 汇总分页结果。
type ContactListResult struct {
	Items      []db.ContactSubmission `json:"items"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"total_pages"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
}

// ContactValidationError 包装字段校验失败信息。
type ContactValidationError struct {
	Fields []string
	err    error
}

func (e *ContactValidationError) Error() string {
	return fmt.Sprintf("invalid contact submission: %s", strings.Join(e.Fields, ", "))
}

func (e *ContactValidationError) Unwrap() error {
	return e.err
}

// ContactService 处理联系表单的提交与后台管理。
type ContactService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewContactService 创建 ContactService。
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Submit 保存一条新的联系表单，状态固定为 new。
func (s *ContactService) Submit(input ContactInput) (*db.ContactSubmission, error) {
	input = ContactInput{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Subject:  strings.TrimSpace(input.Subject),
		Message:  strings.TrimSpace(input.Message),
		Budget:   strings.TrimSpace(input.Budget),
		Timeline: strings.TrimSpace(input.Timeline),
	}

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return nil, &ContactValidationError{Fields: fields, err: err}
		}
		return nil, err
	}

	submission := db.ContactSubmission{
		Name:     input.Name,
		Email:    input.Email,
		Subject:  input.Subject,
		Message:  input.Message,
		Budget:   input.Budget,
		Timeline: input.Timeline,
		Status:   db.ContactStatusNew,
	}
	if err := s.db.Create(&submission).Error; err != nil {
		return nil, fmt.Errorf("create contact submission: %w", err)
	}
	return &submission, nil
}

// List 按创建时间倒序返回提交记录。
func (s *ContactService) List(filter ContactFilter) (*ContactListResult, error) {
	result := &ContactListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 20),
	}

	query := s.db.Model(&db.ContactSubmission{})
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		if !slices.Contains(contactStatuses, status) {
			return nil, ErrContactStatusInvalid
		}
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	items := make([]db.ContactSubmission, 0, result.PerPage)
	if err := query.Order("created_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}

	result.Items = items
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	return result, nil
}

// Get 获取单条提交，不存在时返回 (nil, nil)。
func (s *ContactService) Get(id uint) (*db.ContactSubmission, error) {
	var submission db.ContactSubmission
	if err := s.db.First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// UpdateStatus 修改处理状态。
func (s *ContactService) UpdateStatus(id uint, status string) (*db.ContactSubmission, error) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(contactStatuses, normalized) {
		return nil, ErrContactStatusInvalid
	}

	var submission db.ContactSubmission
	if err := s.db.First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	submission.Status = normalized
	if err := s.db.Save(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// Delete 删除一条提交。
func (s *ContactService) Delete(id uint) error {
	result := s.db.Delete(&db.ContactSubmission{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

// CountByStatus 返回每种状态的数量，未出现的状态计为 0。
func (s *ContactService) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := s.db.Model(&db.ContactSubmission{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(contactStatuses))
	for _, status := range contactStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
