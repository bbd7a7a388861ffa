package main

import (
	"flag"

	"gamerlog/crud"
	"gamerlog/database"
	"gamerlog/http"
	"gamerlog/mail"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that all secrets are provided through the environment before the application starts.")
	flag.Parse()

	// Load configuration from the environment, with dev defaults otherwise.
	config := LoadConfig(*productionBool)

	// Open a database connection and execute migrations.
	db := database.NewDB(config.Database.ConnectionInfo())
	err := database.Open(db, config.IsProd())
	must(err)
	defer database.Close(db)
	err = database.AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper),
		crud.WithBlog(),
		crud.WithLike(),
		crud.WithMessage(),
		crud.WithDashboard(),
	)
	must(err)

	// Set up the mailer for password-reset codes.
	mailer := mail.NewMailer(config.SMTP.Host, config.SMTP.Port, config.SMTP.User, config.SMTP.Pass)

	// Set up a webserver.
	server := http.NewServer(services, mailer, config.JWTSecret, config.MaxBodyBytes)

	// Serve the app.
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
