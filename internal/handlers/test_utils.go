package handlers

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okozhina/go-task-manager/internal/auth"
	"github.com/okozhina/go-task-manager/internal/models"
)

type MockAccountRepository struct {
	accounts  map[uuid.UUID]*models.Account
	createErr error
	getErr    error
	mutex     sync.Mutex
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[uuid.UUID]*models.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.accounts {
		if existing.Username == account.Username {
			return errors.New("username exists")
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	account, exists := m.accounts[accountID]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return account, nil
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, account := range m.accounts {
		if account.Username == username {
			return account, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var accounts []*models.Account
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, account *models.Account) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.accounts[account.ID]; !exists {
		return sql.ErrNoRows
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	accountID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	if _, exists := m.accounts[accountID]; !exists {
		return sql.ErrNoRows
	}
	delete(m.accounts, accountID)
	return nil
}

func (m *MockAccountRepository) add(account *models.Account) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.accounts[account.ID] = account
}

type MockTaskRepository struct {
	tasks  map[uuid.UUID]*models.Task
	getErr error
	mutex  sync.Mutex
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{tasks: make(map[uuid.UUID]*models.Task)}
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tasks[task.ID] = task
	return nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return task, nil
}

func (m *MockTaskRepository) ListAll(ctx context.Context) ([]*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var tasks []*models.Task
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (m *MockTaskRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var tasks []*models.Task
	for _, task := range m.tasks {
		if task.OwnerID.String() == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.tasks[task.ID]; !exists {
		return sql.ErrNoRows
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	taskID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	if _, exists := m.tasks[taskID]; !exists {
		return sql.ErrNoRows
	}
	delete(m.tasks, taskID)
	return nil
}

func (m *MockTaskRepository) add(task *models.Task) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tasks[task.ID] = task
}

func setupMockAccount(repo *MockAccountRepository, username, password string, role models.Role) *models.Account {
	hash, _ := auth.HashPassword(password)
	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	repo.add(account)
	return account
}

func setupMockTask(repo *MockTaskRepository, ownerID uuid.UUID, title string) *models.Task {
	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: "desc",
		DueDate:     now.Add(48 * time.Hour),
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	repo.add(task)
	return task
}
