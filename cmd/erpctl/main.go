// erpctl herramienta de operación: migraciones, datos maestros, tokens y vista previa de impuestos.
package main

func main() {
	Execute()
}
