package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/config"
	"github.com/stemsi/university-api/internal/database"
	"github.com/stemsi/university-api/internal/logger"
	"github.com/stemsi/university-api/internal/model"
	"github.com/stemsi/university-api/internal/repository"
	"github.com/stemsi/university-api/internal/service"
)

// catalogue maps a faculty to the groups created under it.
var catalogue = []struct {
	faculty string
	groups  []string
}{
	{"Engineering", []string{"ENG-101", "ENG-102"}},
	{"Medicine", []string{"MED-201"}},
	{"Economics", []string{"ECO-301", "ECO-302"}},
}

var firstNames = []string{
	"Anna", "Boris", "Clara", "Daniel", "Elena", "Felix", "Greta", "Hugo",
	"Irina", "Jonas", "Katya", "Leon", "Maria", "Nikolai", "Olga", "Pavel",
}

var lastNames = []string{
	"Ivanova", "Petrov", "Smirnova", "Kuznetsov", "Popova", "Volkov", "Sokolova", "Lebedev",
}

func main() {
	perGroup := flag.Int("students", 5, "Students created per group")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.StorageDriver != config.StoragePostgres {
		log.Fatal().Str("driver", cfg.StorageDriver).Msg("Seeding requires STORAGE_DRIVER=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	store := repository.NewPostgresStore(pool)
	facultyService := service.NewFacultyService(store, cache.Nop{}, log)
	groupService := service.NewGroupService(store, cache.Nop{}, log)
	studentService := service.NewStudentService(store, cache.Nop{}, log)

	existing, err := facultyService.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list faculties")
	}
	byName := make(map[string]int, len(existing))
	for _, f := range existing {
		byName[f.Name] = f.ID
	}

	created := 0
	n := 0
	for _, entry := range catalogue {
		facultyID, ok := byName[entry.faculty]
		if ok {
			log.Info().Str("faculty", entry.faculty).Int("faculty_id", facultyID).Msg("Faculty exists, skipping")
			continue
		}
		f, err := facultyService.Create(ctx, entry.faculty)
		if err != nil {
			log.Fatal().Err(err).Str("faculty", entry.faculty).Msg("Failed to create faculty")
		}

		for _, groupName := range entry.groups {
			g, err := groupService.Create(ctx, &model.Group{Name: groupName, FacultyID: f.ID})
			if err != nil {
				log.Fatal().Err(err).Str("group", groupName).Msg("Failed to create group")
			}

			for i := 0; i < *perGroup; i++ {
				first := firstNames[n%len(firstNames)]
				last := lastNames[n%len(lastNames)]
				st := &model.Student{
					Name:      first,
					LastName:  last,
					Email:     fmt.Sprintf("student%d@university.test", n+1),
					Phone:     fmt.Sprintf("%011d", 79000000000+n),
					FacultyID: f.ID,
					GroupID:   g.ID,
				}
				n++
				if _, err := studentService.Create(ctx, st); err != nil {
					log.Error().Err(err).Str("email", st.Email).Msg("Failed to create student")
					continue
				}
				created++
			}
		}
	}

	log.Info().Int("students", created).Msg("Seed completed")
}
