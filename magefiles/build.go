//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the animac binary into bin/.
func (Build) Cli() error {
	if _, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "animac"), "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Writes the testbed assets into assets/.
func (Build) Sample() error {
	mg.Deps(Build.Cli)
	if _, err := executeCmd(filepath.Join("bin", "animac"), withArgs("sample", "assets"), withStream()); err != nil {
		return err
	}
	return nil
}

// Compiles every .toml file under content/ into assets/.
func (Build) Content() error {
	mg.Deps(Build.Cli)
	sources, err := filepath.Glob(filepath.Join("content", "*.toml"))
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("no sources under content/")
		return nil
	}
	if err := os.MkdirAll("assets", 0o755); err != nil {
		return err
	}
	for _, src := range sources {
		name := filepath.Base(src)
		out := filepath.Join("assets", name[:len(name)-len(filepath.Ext(name))]+".anc")
		if _, err := executeCmd(filepath.Join("bin", "animac"), withArgs("build", src, out)); err != nil {
			return err
		}
	}
	return nil
}
