// workshopctl административная утилита: миграции схемы и реестр подъёмников
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultEnv(os.Stdout)).Execute(); err != nil {
		os.Exit(1)
	}
}
