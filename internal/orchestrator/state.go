package orchestrator

import (
	"time"

	"github.com/shaiso/invoker/internal/domain"
	"github.com/shaiso/invoker/internal/engine"
)

// RunState — состояние одного run в памяти.
//
// Создаётся в начале Execute и отбрасывается в конце: хранилище
// результатов живёт ровно один run. Доступ только из горутины
// Execute, поэтому блокировок нет.
type RunState struct {
	// Run — отчёт о выполнении, который возвращает Execute.
	Run *domain.Run

	// Store — результаты уже выполненных команд.
	Store *engine.Store
}

// NewRunState создаёт состояние с пустым хранилищем.
func NewRunState(run *domain.Run) *RunState {
	return &RunState{
		Run:   run,
		Store: engine.NewStore(),
	}
}

// begin создаёт запись о выполнении команды.
func (s *RunState) begin(index int, cmd *domain.Command) *domain.Execution {
	return &domain.Execution{
		Index:      index,
		ObjectType: cmd.ObjectType,
		Method:     cmd.Method,
		ResultsID:  cmd.ResultsID,
		StartedAt:  time.Now(),
	}
}

// succeed фиксирует успешную команду в отчёте.
func (s *RunState) succeed(exec *domain.Execution, result map[string]any) *domain.Execution {
	exec.Status = domain.ExecutionStatusSucceeded
	exec.Result = result
	exec.FinishedAt = time.Now()
	s.Run.Executions = append(s.Run.Executions, *exec)
	return &s.Run.Executions[len(s.Run.Executions)-1]
}

// fail фиксирует упавшую команду в отчёте.
func (s *RunState) fail(exec *domain.Execution, result map[string]any, err *CommandError) *domain.Execution {
	exec.Status = domain.ExecutionStatusFailed
	exec.Stage = string(err.Stage)
	exec.Result = result
	exec.Error = err.Error()
	exec.FinishedAt = time.Now()
	s.Run.Executions = append(s.Run.Executions, *exec)
	return &s.Run.Executions[len(s.Run.Executions)-1]
}
