package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"ramen-log/config"
	dbPkg "ramen-log/pkg/db"

	_ "github.com/go-sql-driver/mysql"
	"github.com/urfave/cli/v2"
)

// 子表在前，父表在后
var tables = []string{"ramen_log", "ikitai_status", "user_relationship", "user"}

func main() {
	app := &cli.App{
		Name:  "reset_db",
		Usage: "清空 ramen-log 所有业务表（保留表结构，仅支持 mysql）",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultConfigPath,
				Usage: "配置文件路径",
			},
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "跳过确认提示",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := config.LoadConfigFrom(c.String("config"))
	if cfg.Database.Driver != "" && cfg.Database.Driver != "mysql" {
		return fmt.Errorf("unsupported driver %q, only mysql", cfg.Database.Driver)
	}

	db, err := sql.Open("mysql", dbPkg.MySQLDSN(cfg.Database))
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	fmt.Printf("Database connected: %s\n", cfg.Database.Database)

	if !c.Bool("yes") && !confirm() {
		fmt.Println("Operation cancelled")
		return nil
	}

	// FOREIGN_KEY_CHECKS 是会话级变量，固定在同一连接上执行
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=0"); err != nil {
		return err
	}
	defer func() { _, _ = conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1") }()

	var failed int
	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE `%s`", table)); err != nil {
			failed++
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		fmt.Println("Success")
	}
	if failed > 0 {
		return fmt.Errorf("%d table(s) could not be cleared", failed)
	}

	fmt.Println("\nDatabase reset completed, auto-increment IDs reset to 1")
	return nil
}

func confirm() bool {
	fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
	fmt.Print("Type 'YES' to confirm: ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "YES"
}
