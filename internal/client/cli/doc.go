// Package cli is the interactive front end of the stamp card app.
//
// A customer sees their card and claims rewards; an admin manages users and
// can open any customer's card. Which commands are available depends on the
// current session; type "help" at the prompt to list them.
package cli
