// seeders/content_seeder.go
package seeders

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ascent-learning/ascent_api/model"
)

// ContentSeeder handles seeding the program, course and lesson hierarchy
type ContentSeeder struct {
	db *gorm.DB
}

// NewContentSeeder creates a new content seeder
func NewContentSeeder(db *gorm.DB) *ContentSeeder {
	return &ContentSeeder{db: db}
}

// SeedContent seeds a sample onboarding program with ordered courses
// and lessons
func (s *ContentSeeder) SeedContent() error {
	if err := s.seedPrograms(); err != nil {
		return err
	}
	if err := s.seedCourses(); err != nil {
		return err
	}
	if err := s.seedLessons(); err != nil {
		return err
	}
	if err := s.seedHierarchy(); err != nil {
		return err
	}

	log.Println("Content seeding completed successfully")
	return nil
}

func (s *ContentSeeder) seedPrograms() error {
	for _, program := range s.getPrograms() {
		var existing model.Program
		if err := s.db.Where("id = ?", program.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&program).Error; err != nil {
					log.Printf("Error creating program %s: %v", program.Title, err)
					return err
				}
				log.Printf("Created program: %s", program.Title)
			} else {
				return err
			}
		} else {
			log.Printf("Program %s already exists, skipping", program.Title)
		}
	}
	return nil
}

func (s *ContentSeeder) seedCourses() error {
	for _, course := range s.getCourses() {
		var existing model.Course
		if err := s.db.Where("id = ?", course.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&course).Error; err != nil {
					log.Printf("Error creating course %s: %v", course.Title, err)
					return err
				}
				log.Printf("Created course: %s", course.Title)
			} else {
				return err
			}
		} else {
			log.Printf("Course %s already exists, skipping", course.Title)
		}
	}
	return nil
}

func (s *ContentSeeder) seedLessons() error {
	for _, lesson := range s.getLessons() {
		var existing model.Lesson
		if err := s.db.Where("id = ?", lesson.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&lesson).Error; err != nil {
					log.Printf("Error creating lesson %s: %v", lesson.Title, err)
					return err
				}
				log.Printf("Created lesson: %s", lesson.Title)
			} else {
				return err
			}
		} else {
			log.Printf("Lesson %s already exists, skipping", lesson.Title)
		}
	}
	return nil
}

func (s *ContentSeeder) seedHierarchy() error {
	for _, pc := range s.getProgramCourses() {
		var existing model.ProgramCourse
		if err := s.db.Where("program_id = ? AND course_id = ?", pc.ProgramID, pc.CourseID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&pc).Error; err != nil {
					return err
				}
			} else {
				return err
			}
		}
	}

	for _, cl := range s.getCourseLessons() {
		var existing model.CourseLesson
		if err := s.db.Where("course_id = ? AND lesson_id = ?", cl.CourseID, cl.LessonID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&cl).Error; err != nil {
					return err
				}
			} else {
				return err
			}
		}
	}
	return nil
}

func (s *ContentSeeder) getPrograms() []model.Program {
	now := time.Now()
	return []model.Program{
		{
			ID:          "program_security_onboarding",
			Title:       "Security Onboarding",
			Description: "Mandatory security awareness training for all new hires.",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func (s *ContentSeeder) getCourses() []model.Course {
	now := time.Now()
	return []model.Course{
		{
			ID:          "course_security_basics",
			Title:       "Security Basics",
			Description: "Passwords, phishing and safe browsing.",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "course_data_handling",
			Title:       "Data Handling",
			Description: "Classifying, storing and sharing company data.",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func (s *ContentSeeder) getLessons() []model.Lesson {
	now := time.Now()
	return []model.Lesson{
		{
			ID:         "lesson_passwords",
			Title:      "Strong Passwords",
			Content:    "Why password length beats complexity, and how to use the company password manager.",
			Difficulty: model.DifficultyBeginner,
			Quiz: mustQuiz([]quizQuestion{
				{
					ID:       "q_pw_1",
					Type:     "multiple_choice",
					Question: "Which of these is the strongest password?",
					Options:  []string{"P@ssw0rd", "correct horse battery staple", "123456", "qwerty"},
					Answer:   "correct horse battery staple",
					Points:   10,
				},
			}),
			MinScore:  60,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:         "lesson_phishing",
			Title:      "Spotting Phishing",
			Content:    "Recognising spoofed senders, urgent-action lures and credential harvesting pages.",
			Difficulty: model.DifficultyBeginner,
			Quiz: mustQuiz([]quizQuestion{
				{
					ID:       "q_ph_1",
					Type:     "multiple_choice",
					Question: "An email urges you to reset your password via an unfamiliar link. What do you do?",
					Options:  []string{"Click it quickly", "Report it to security", "Forward it to a colleague", "Ignore company email"},
					Answer:   "Report it to security",
					Points:   10,
				},
			}),
			MinScore:  60,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:         "lesson_classification",
			Title:      "Data Classification",
			Content:    "Public, internal, confidential and restricted data, and what each label requires.",
			Difficulty: model.DifficultyIntermediate,
			Quiz: mustQuiz([]quizQuestion{
				{
					ID:       "q_dc_1",
					Type:     "multiple_choice",
					Question: "Customer payment details fall under which classification?",
					Options:  []string{"Public", "Internal", "Restricted", "Unclassified"},
					Answer:   "Restricted",
					Points:   10,
				},
			}),
			MinScore:  70,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:         "lesson_sharing",
			Title:      "Sharing Data Safely",
			Content:    "Approved channels for sharing documents inside and outside the company.",
			Difficulty: model.DifficultyIntermediate,
			Quiz: mustQuiz([]quizQuestion{
				{
					ID:       "q_ds_1",
					Type:     "multiple_choice",
					Question: "A vendor asks for a confidential report. Which channel do you use?",
					Options:  []string{"Personal email", "The approved secure transfer portal", "Public file host", "Chat message"},
					Answer:   "The approved secure transfer portal",
					Points:   10,
				},
			}),
			MinScore:  70,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (s *ContentSeeder) getProgramCourses() []model.ProgramCourse {
	now := time.Now()
	return []model.ProgramCourse{
		{ID: "pc_security_basics", ProgramID: "program_security_onboarding", CourseID: "course_security_basics", Order: 0, CreatedAt: now},
		{ID: "pc_data_handling", ProgramID: "program_security_onboarding", CourseID: "course_data_handling", Order: 1, CreatedAt: now},
	}
}

func (s *ContentSeeder) getCourseLessons() []model.CourseLesson {
	now := time.Now()
	return []model.CourseLesson{
		{ID: "cl_passwords", CourseID: "course_security_basics", LessonID: "lesson_passwords", Order: 0, CreatedAt: now},
		{ID: "cl_phishing", CourseID: "course_security_basics", LessonID: "lesson_phishing", Order: 1, CreatedAt: now},
		{ID: "cl_classification", CourseID: "course_data_handling", LessonID: "lesson_classification", Order: 0, CreatedAt: now},
		{ID: "cl_sharing", CourseID: "course_data_handling", LessonID: "lesson_sharing", Order: 1, CreatedAt: now},
	}
}

type quizQuestion struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
	Points   int      `json:"points"`
}

func mustQuiz(questions []quizQuestion) json.RawMessage {
	b, err := json.Marshal(questions)
	if err != nil {
		panic(err)
	}
	return b
}
