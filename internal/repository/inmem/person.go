package inmem

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
)

type personDirectory struct {
	db *DB
}

func NewPersonDirectory(db *DB) person.Directory {
	return &personDirectory{db: db}
}

func (repo *personDirectory) GetByID(ctx context.Context, id string, personType person.Type) (person.Person, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	p, ok := repo.db.persons[id]
	if !ok || p.Type != personType {
		return person.Person{}, person.ErrPersonNotFound
	}
	return p, nil
}

func (repo *personDirectory) ListActive(ctx context.Context, personType person.Type) ([]person.Person, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var persons []person.Person
	for _, p := range repo.db.persons {
		if p.IsActive && (personType == "" || p.Type == personType) {
			persons = append(persons, p)
		}
	}
	sort.Slice(persons, func(i, j int) bool { return persons[i].ID < persons[j].ID })
	return persons, nil
}
