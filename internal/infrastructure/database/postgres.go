package database

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/config"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(GormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to PostgreSQL")
	return db, nil
}

// GormLogLevel maps a config string to gorm's logger level, defaulting to warn
func GormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Models lists every persisted entity in migration order
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.Tenant{},
		&entity.TenantMembership{},

		&entity.Patient{},
		&entity.Appointment{},
		&entity.MedicalNote{},
		&entity.Prescription{},
		&entity.PrescriptionItem{},
		&entity.LabOrder{},

		&entity.ClinicService{},
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.Payment{},

		&entity.IdempotencyKey{},
		&entity.AuditLog{},
		&entity.ReminderLog{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log zerolog.Logger) error {
	log.Info().Msg("running database migrations")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// Permissions is the full permission catalogue
var Permissions = []string{
	entity.PermViewDashboard,
	entity.PermManagePatients,
	entity.PermManageAppointments,
	entity.PermManageRecords,
	entity.PermManagePrescriptions,
	entity.PermManageLabOrders,
	entity.PermManageServices,
	entity.PermManageBilling,
	entity.PermManageUsers,
	entity.PermManageSettings,
	entity.PermViewAuditLogs,
	entity.PermAccessPortal,
}

// RolePermissions maps each seeded role to its permissions. A nil slice grants everything.
var RolePermissions = map[string][]string{
	entity.RoleSuperAdmin: nil,
	entity.RoleAdmin:      nil,
	entity.RoleDoctor: {
		entity.PermViewDashboard,
		entity.PermManagePatients,
		entity.PermManageAppointments,
		entity.PermManageRecords,
		entity.PermManagePrescriptions,
		entity.PermManageLabOrders,
	},
	entity.RoleNurse: {
		entity.PermViewDashboard,
		entity.PermManagePatients,
		entity.PermManageAppointments,
		entity.PermManageRecords,
		entity.PermManageLabOrders,
	},
	entity.RoleReceptionist: {
		entity.PermViewDashboard,
		entity.PermManagePatients,
		entity.PermManageAppointments,
		entity.PermManageServices,
		entity.PermManageBilling,
	},
	entity.RolePatient: {
		entity.PermAccessPortal,
	},
}

// AdminSeed describes the optional super admin account created by SeedDefaultData
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// SeedDefaultData seeds roles, permissions and optionally a super admin user
func SeedDefaultData(db *gorm.DB, admin AdminSeed, log zerolog.Logger) error {
	log.Info().Msg("seeding default data")

	for _, name := range Permissions {
		perm := entity.Permission{Name: name, GuardName: "web"}
		if err := db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
	}

	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}

	for roleName, permNames := range RolePermissions {
		role := entity.Role{Name: roleName, GuardName: "web"}
		if err := db.Where("name = ?", roleName).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}
		perms := selectPermissions(allPermissions, permNames)
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("sync permissions for %s: %w", roleName, err)
		}
	}

	if admin.Email == "" || admin.Password == "" {
		log.Info().Msg("default data seeding completed")
		return nil
	}

	var existing entity.User
	if err := db.Where("email = ?", admin.Email).First(&existing).Error; err == nil {
		log.Info().Str("email", admin.Email).Msg("super admin user already exists")
		return nil
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var saRole entity.Role
	if err := db.Where("name = ?", entity.RoleSuperAdmin).First(&saRole).Error; err != nil {
		return fmt.Errorf("load super-admin role: %w", err)
	}

	firstName, lastName := SplitName(admin.Name, "Super Admin")
	adminUser := entity.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     admin.Email,
		Username:  admin.Email,
		Password:  hashed,
		Roles:     []entity.Role{saRole},
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("create super admin user: %w", err)
	}

	log.Info().Str("email", admin.Email).Msg("super admin user created")
	return nil
}

func selectPermissions(all []entity.Permission, names []string) []entity.Permission {
	if names == nil {
		return all
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make([]entity.Permission, 0, len(names))
	for _, p := range all {
		if wanted[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// SplitName splits a full name at the first space, using fallback when name is blank
func SplitName(name, fallback string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	first, last, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
