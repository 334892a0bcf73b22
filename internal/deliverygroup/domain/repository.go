package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	"gorm.io/gorm"
)

type Repository interface {
	InsertGroup(ctx context.Context, db *gorm.DB, group *DeliveryGroup) error
	FindGroupByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DeliveryGroup, error)
	FindGroupByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DeliveryGroup, error)
	DeleteGroup(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	FindMealForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*scheduledomain.ScheduledMeal, error)
	FindOrderForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*walletdomain.CurryOrder, error)
	// AssignMeal/AssignOrder set a member's group and slot together.
	AssignMeal(ctx context.Context, db *gorm.DB, mealID snowflake.ID, groupID *snowflake.ID, slot catalogdomain.DeliverySlot) error
	AssignOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID, groupID *snowflake.ID, slot catalogdomain.DeliverySlot) error
	// DetachMembers clears the group reference on every member while
	// leaving each member's delivery slot untouched.
	DetachMembers(ctx context.Context, db *gorm.DB, groupID snowflake.ID) error
	ListMembers(ctx context.Context, db *gorm.DB, groupID snowflake.ID) ([]scheduledomain.ScheduledMeal, []walletdomain.CurryOrder, error)
}
