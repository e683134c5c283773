package middleware

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// ServerInfo muestra información del servidor al iniciar
func ServerInfo(port string, logger *zap.Logger) {
	hostname, _ := os.Hostname()
	goVersion := runtime.Version()
	numCPU := runtime.NumCPU()
	startTime := time.Now().Format("2006-01-02 15:04:05")

	fmt.Println("")
	fmt.Println(boldColor + "Equipment Movement Service" + resetColor)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("Started at: " + startTime)
	fmt.Println("Server URL: " + cyanColor + "http://localhost:" + port + resetColor)
	fmt.Println("Hostname:   " + hostname)
	fmt.Println("Go Version: " + goVersion)
	fmt.Println("CPU Cores:  " + fmt.Sprintf("%d", numCPU))
	fmt.Println("")
	fmt.Println(boldColor + "Endpoints:" + resetColor)
	fmt.Println("   POST " + greenColor + "/api/v1/movements" + resetColor + "          - Record a movement")
	fmt.Println("   POST " + greenColor + "/api/v1/movements/handover" + resetColor + " - Atomic handover")
	fmt.Println("   GET  " + greenColor + "/api/v1/equipment/:code" + resetColor + "    - Equipment snapshot")
	fmt.Println("   GET  " + greenColor + "/health" + resetColor + "                    - Health check")
	fmt.Println("")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("")

	logger.Info("Server started successfully",
		zap.String("port", port),
		zap.String("hostname", hostname),
		zap.String("go_version", goVersion),
		zap.Int("cpu_cores", numCPU),
		zap.String("start_time", startTime),
	)
}
