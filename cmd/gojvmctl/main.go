// Command gojvmctl is the CLI front end, grounded on saferwall-pe's
// cobra-based cmd/pedumper.go (the one cobra.Command usage anywhere in
// the retrieval pack), replacing daimatz-gojvm's flag/env-var driven
// cmd/gojvm/main.go with run/verify subcommands.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hornetvm/hornet/pkg/class"
	"github.com/hornetvm/hornet/pkg/loader"
	"github.com/hornetvm/hornet/pkg/runtime"
)

var (
	bootstrapJmod string
	methodName    string
	methodDesc    string
	verbose       bool
)

// findBootstrapJmod mirrors daimatz-gojvm's findJmodPath: an explicit
// flag wins, then JAVA_BASE_JMOD, then JAVA_HOME/jmods/java.base.jmod,
// then a glob over the usual OpenJDK install locations.
func findBootstrapJmod() string {
	if bootstrapJmod != "" {
		return bootstrapJmod
	}
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

func buildLoader(classpathDir string) class.Loader {
	self := loader.NewDirectoryLoader(classpathDir)
	if jmod := findBootstrapJmod(); jmod != "" {
		bootstrap := loader.NewArchiveLoader(jmod, "classes/", 4)
		return loader.NewDelegatingLoader(bootstrap, self)
	}
	return self
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func runRun(cmd *cobra.Command, args []string) error {
	filename := args[0]
	dir := filepath.Dir(filename)
	className := strings.TrimSuffix(filepath.Base(filename), ".class")

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	jvm := runtime.New(log)
	ld := buildLoader(dir)

	result, hasResult, err := jvm.Invoke(ld, className, methodName, methodDesc)
	if err != nil {
		return fmt.Errorf("running %s.%s%s: %w", className, methodName, methodDesc, err)
	}
	if hasResult {
		fmt.Printf("%s.%s%s = %d\n", className, methodName, methodDesc, result.I)
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	filename := args[0]
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	dir := filepath.Dir(filename)
	ld := buildLoader(dir)

	c, err := class.Decode(f, ld)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	fmt.Printf("%s: ok (class %s)\n", filename, c.Name)
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "gojvmctl",
		Short: "A minimal JVM core: decode, verify, and run class files",
	}
	rootCmd.PersistentFlags().StringVar(&bootstrapJmod, "bootstrap-jmod", "", "path to a java.base.jmod used as the bootstrap loader")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run <classfile>",
		Short: "Register a class and invoke a nullary static method on it",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	runCmd.Flags().StringVar(&methodName, "method", "main", "method name to invoke")
	runCmd.Flags().StringVar(&methodDesc, "descriptor", "()V", "method descriptor")

	verifyCmd := &cobra.Command{
		Use:   "verify <classfile>",
		Short: "Decode and structurally verify a class file without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}

	rootCmd.AddCommand(runCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
