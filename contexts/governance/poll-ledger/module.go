package pollledger

import (
	"log/slog"

	httpadapter "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/adapters/http"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/adapters/memory"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/application/commands"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/application/queries"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls  ports.PollRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	pollUseCase := commands.PollUseCase{
		Polls:  deps.Polls,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	pollQueries := queries.PollQueries{
		Polls: deps.Polls,
	}
	return Module{
		Handler: httpadapter.Handler{
			Polls:   pollUseCase,
			Queries: pollQueries,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Poll, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Polls:  store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
