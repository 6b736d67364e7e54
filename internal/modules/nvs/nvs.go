// Package nvs exposes the persistent store as a module with a dump command
// and a factory reset.
package nvs

import (
	"sort"
	"strings"

	"xeweos/internal/module"
	"xeweos/internal/store"
)

// Storage is the part of store.Prefs the module needs beyond ostypes.Store.
type Storage interface {
	Backend() store.Backend
	EraseAll()
}

// Nvs is the module owning the persistent store.
type Nvs struct {
	*module.Module

	storage Storage
}

// New creates the Nvs module over storage, which must back env.Store.
func New(env *module.Env, storage Storage) *Nvs {
	n := &Nvs{storage: storage}
	n.Module = module.New(env, module.Spec{
		Name:         "Nvs",
		Description:  "Stores user settings even when the power is off",
		NamespaceKey: "nvs",
		HasCommands:  true,
	}, module.Hooks{
		Reset:  n.erase,
		Status: n.status,
	})
	n.AddCommand(module.Command{
		Name:        "dump",
		Description: "Print every stored setting",
		Handler:     func(string) { n.dump() },
	})
	return n
}

func (n *Nvs) dump() {
	text, err := store.DumpYAML(n.storage.Backend())
	if err != nil {
		n.Console().Println("Unable to read storage")
		n.Logger().Error("Dump failed", "error", err)
		return
	}
	n.Console().Print(text)
}

// erase wipes every namespace; the generic reset then re-marks this one.
func (n *Nvs) erase() {
	n.Logger().Info("Clearing all stored preferences")
	n.storage.EraseAll()
}

func (n *Nvs) status() string {
	dump, err := n.storage.Backend().Dump()
	if err != nil {
		return "storage unreadable"
	}
	names := make([]string, 0, len(dump))
	for ns := range dump {
		names = append(names, ns)
	}
	if len(names) == 0 {
		return "no namespaces"
	}
	sort.Strings(names)
	return "namespaces: " + strings.Join(names, ", ")
}
