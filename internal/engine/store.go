package engine

import "fmt"

// Result — непрозрачный результат вызова capability.
// Движок читает из него только именованные свойства.
type Result = map[string]any

// Store — хранилище результатов одного run.
//
// Только добавление: каждая успешно выполненная команда публикует
// ровно один результат под своим resultsID. Записи не удаляются и
// не перезаписываются. Писатель один (оркестратор), читатель один
// (резолвер следующей команды), поэтому блокировки не нужны.
type Store struct {
	results map[string]Result
	order   []string
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		results: make(map[string]Result),
	}
}

// Publish публикует результат под resultsID.
// Возвращает ErrDuplicateResultsID, если resultsID уже опубликован.
func (s *Store) Publish(resultsID string, result Result) error {
	if _, exists := s.results[resultsID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResultsID, resultsID)
	}
	if result == nil {
		result = make(Result)
	}
	s.results[resultsID] = result
	s.order = append(s.order, resultsID)
	return nil
}

// Lookup возвращает результат по resultsID.
func (s *Store) Lookup(resultsID string) (Result, bool) {
	r, ok := s.results[resultsID]
	return r, ok
}

// Has проверяет, опубликован ли resultsID.
func (s *Store) Has(resultsID string) bool {
	_, ok := s.results[resultsID]
	return ok
}

// IDs возвращает опубликованные resultsID в порядке публикации.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Len возвращает количество опубликованных результатов.
func (s *Store) Len() int {
	return len(s.order)
}
