// Package main provides the entry point for the Circuit Designer application.
package main

import (
	"log"

	fyneapp "fyne.io/fyne/v2/app"

	"circuit-designer/internal/app"
	"circuit-designer/internal/version"
	"circuit-designer/ui/mainwindow"
	"circuit-designer/ui/prefs"
)

const appTitle = "Circuit Designer"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.NewWithID("circuit-designer")

	appState := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)
	win.SetTitle(appTitle)

	win.ShowAndRun()
}
