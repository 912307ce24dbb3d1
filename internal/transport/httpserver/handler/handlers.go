package handler

import (
	budgetdomain "famconomy-go/internal/domain/budget"
	choredomain "famconomy-go/internal/domain/chore"
	familydomain "famconomy-go/internal/domain/family"
	guidelinedomain "famconomy-go/internal/domain/guideline"
	shoppingdomain "famconomy-go/internal/domain/shopping"
	syncdomain "famconomy-go/internal/domain/sync"
	"famconomy-go/pkg/logger"
)

type Handlers struct {
	Guidelines *guidelinedomain.Service
	Families   *familydomain.Service
	Shopping   *shoppingdomain.Service
	Budget     *budgetdomain.Service
	Chores     *choredomain.Service
	Sync       *syncdomain.Service
	log        logger.Logger
}

func New(
	guidelines *guidelinedomain.Service,
	families *familydomain.Service,
	shopping *shoppingdomain.Service,
	budget *budgetdomain.Service,
	chores *choredomain.Service,
	syncService *syncdomain.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Guidelines: guidelines,
		Families:   families,
		Shopping:   shopping,
		Budget:     budget,
		Chores:     chores,
		Sync:       syncService,
		log:        log,
	}
}
