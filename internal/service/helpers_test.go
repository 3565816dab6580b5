package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/repository"
)

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) add(user models.User) models.User {
	user.ID = m.nextID
	m.users[m.nextID] = user
	m.nextID++
	return user
}

func (m *memoryUserRepo) List(_ context.Context, filter repository.UserFilter) ([]models.User, error) {
	results := make([]models.User, 0, len(m.users))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, user := range m.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(user.Name + " " + user.Email + " " + user.NIP + " " + user.Jabatan + " " + user.Bidang)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		results = append(results, user)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[m.nextID] = *user
	m.nextID++
	return nil
}

func (m *memoryUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) CountByRole(_ context.Context, role models.Role) (int64, error) {
	var count int64
	for _, user := range m.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type memoryAssessmentRepo struct {
	assessments       map[uint]models.Assessment
	participants      map[uint]models.AssessmentParticipant
	nextAssessmentID  uint
	nextParticipantID uint
	users             *memoryUserRepo
	lastFilter        repository.AssessmentFilter
}

func newMemoryAssessmentRepo(users *memoryUserRepo) *memoryAssessmentRepo {
	return &memoryAssessmentRepo{
		assessments:       make(map[uint]models.Assessment),
		participants:      make(map[uint]models.AssessmentParticipant),
		nextAssessmentID:  1,
		nextParticipantID: 1,
		users:             users,
	}
}

func (m *memoryAssessmentRepo) Create(_ context.Context, assessment *models.Assessment) error {
	assessment.ID = m.nextAssessmentID
	assessment.CreatedAt = time.Now()
	m.nextAssessmentID++

	for i := range assessment.Evaluators {
		assessment.Evaluators[i].ID = uint(i + 1)
		assessment.Evaluators[i].AssessmentID = assessment.ID
	}

	for i := range assessment.Participants {
		assessment.Participants[i].ID = m.nextParticipantID
		assessment.Participants[i].AssessmentID = assessment.ID
		m.participants[m.nextParticipantID] = assessment.Participants[i]
		m.nextParticipantID++
	}

	m.assessments[assessment.ID] = *assessment
	return nil
}

func (m *memoryAssessmentRepo) GetByID(_ context.Context, id uint) (models.Assessment, error) {
	assessment, ok := m.assessments[id]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}

	// Refresh join rows and expand user profiles the way Preload would.
	for i := range assessment.Participants {
		if current, ok := m.participants[assessment.Participants[i].ID]; ok {
			assessment.Participants[i] = current
		}
		if m.users != nil {
			if user, err := m.users.GetByID(context.Background(), assessment.Participants[i].UserID); err == nil {
				assessment.Participants[i].User = user
			}
		}
	}
	for i := range assessment.Evaluators {
		if m.users != nil {
			if user, err := m.users.GetByID(context.Background(), assessment.Evaluators[i].UserID); err == nil {
				assessment.Evaluators[i].User = user
			}
		}
	}

	return assessment, nil
}

func (m *memoryAssessmentRepo) List(ctx context.Context, filter repository.AssessmentFilter) ([]models.Assessment, int64, error) {
	m.lastFilter = filter

	matched := make([]models.Assessment, 0, len(m.assessments))
	for id := range m.assessments {
		assessment, _ := m.GetByID(ctx, id)
		if !matchesFilter(assessment, filter) {
			continue
		}
		matched = append(matched, assessment)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched, int64(len(matched)), nil
}

func matchesFilter(assessment models.Assessment, filter repository.AssessmentFilter) bool {
	if filter.ParticipantUserID != 0 {
		found := false
		for _, p := range assessment.Participants {
			if p.UserID == filter.ParticipantUserID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.EvaluatorUserID != 0 {
		found := false
		for _, e := range assessment.Evaluators {
			if e.UserID == filter.EvaluatorUserID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.ParticipantStatus != "" {
		found := false
		for _, p := range assessment.Participants {
			if p.Status == filter.ParticipantStatus {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func (m *memoryAssessmentRepo) GetParticipant(_ context.Context, id uint) (models.AssessmentParticipant, error) {
	participant, ok := m.participants[id]
	if !ok {
		return models.AssessmentParticipant{}, gorm.ErrRecordNotFound
	}
	return participant, nil
}

func (m *memoryAssessmentRepo) UpdateParticipant(_ context.Context, participant *models.AssessmentParticipant) error {
	if _, ok := m.participants[participant.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.participants[participant.ID] = *participant
	return nil
}

func (m *memoryAssessmentRepo) FindParticipation(_ context.Context, assessmentID, userID uint) (models.AssessmentParticipant, error) {
	for _, participant := range m.participants {
		if participant.AssessmentID == assessmentID && participant.UserID == userID {
			return participant, nil
		}
	}
	return models.AssessmentParticipant{}, gorm.ErrRecordNotFound
}

type memoryRoomRepo struct {
	rooms  map[uint]models.Room
	nextID uint
}

func newMemoryRoomRepo() *memoryRoomRepo {
	return &memoryRoomRepo{rooms: make(map[uint]models.Room), nextID: 1}
}

func (m *memoryRoomRepo) List(_ context.Context) ([]models.Room, error) {
	rooms := make([]models.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (m *memoryRoomRepo) GetByID(_ context.Context, id uint) (models.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return models.Room{}, gorm.ErrRecordNotFound
	}
	return room, nil
}

func (m *memoryRoomRepo) Create(_ context.Context, room *models.Room) error {
	room.ID = m.nextID
	m.rooms[m.nextID] = *room
	m.nextID++
	return nil
}

func (m *memoryRoomRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.rooms)), nil
}

type stubUploader struct {
	uploads int
	fail    error
}

func (s *stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.uploads++
	return fmt.Sprintf("https://cdn.example.com/%s?v=%d", name, s.uploads), nil
}
