//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Tidies modules and vets the tree before running the tests.
func (Test) All() error {
	if err := goTidy(); err != nil {
		return err
	}
	mg.SerialDeps(Test.Unit, Test.Race)
	return nil
}
