package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CognitoIQ/go-avro/avrogen"
	"github.com/CognitoIQ/go-avro/internal/commandline"
	"github.com/CognitoIQ/go-avro/project"
	"github.com/CognitoIQ/go-avro/sourcegen"
)

type options struct {
	config        string
	baseNamespace string
	jobs          int
	verbose       int
	replace       commandline.ReplaceRuleList
	tags          commandline.Strings
	noMethods     bool
}

func (o *options) logger(cmd *cobra.Command) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(cmd.ErrOrStderr())
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case o.verbose > 1:
		l.SetLevel(logrus.DebugLevel)
	case o.verbose > 0:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

func (o *options) generator(log *logrus.Logger) *sourcegen.Generator {
	var cfg avrogen.Config
	cfg.Option(avrogen.DefaultOptions...)
	if len(o.tags) > 0 {
		cfg.Option(avrogen.Tags(o.tags...))
	}
	if o.noMethods {
		cfg.Option(avrogen.RecordMethods(false))
	}
	for _, r := range o.replace {
		cfg.Option(avrogen.Replace(r.From.String(), r.To))
	}
	if o.verbose > 0 {
		cfg.Option(avrogen.LogOutput(log), avrogen.LogLevel(o.verbose*2))
	}
	g := sourcegen.New(&cfg, sourcegen.DefaultSettings())
	if o.verbose > 0 {
		g = g.WithLogger(log)
	}
	return g
}

func (o *options) addCompilerFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.VarP(&o.replace, "replace", "r", "identifier replacement rule `regex -> replacement` (repeatable)")
	f.Var(&o.tags, "tag", "struct tag keys to emit for record fields (default avro)")
	f.BoolVar(&o.noMethods, "no-methods", false, "do not generate Schema, Marshal and Unmarshal methods")
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "avrogen [dir]",
		Short: "Generate Go types from Avro schema files",
		Long: `avrogen finds the Avro schema files in a project and writes the Go
types generated from each one next to it, in a namespace that follows
the file's location in the project.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return o.run(cmd, root)
		},
	}
	f := cmd.PersistentFlags()
	f.CountVarP(&o.verbose, "verbose", "v", "log progress; repeat for debug output")
	cmd.Flags().StringVarP(&o.config, "config", "c", "", "configuration file (default <dir>/"+project.ConfigFile+")")
	cmd.Flags().StringVar(&o.baseNamespace, "base-namespace", "", "root namespace of the project")
	cmd.Flags().IntVarP(&o.jobs, "jobs", "j", 0, "number of schema files processed at once")
	o.addCompilerFlags(cmd)

	cmd.AddCommand(newCompileCmd(&o), newResolveCmd(), newInitCmd())
	return cmd
}

func (o *options) run(cmd *cobra.Command, root string) error {
	path := o.config
	if path == "" {
		path = filepath.Join(root, project.ConfigFile)
	}
	cfg, err := project.LoadConfig(path)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("base-namespace") {
		cfg.BaseNamespace = o.baseNamespace
	}
	if flags.Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if o.verbose > 0 {
		cfg.EnableLogging = true
	}

	log := o.logger(cmd)
	if cfg.EnableLogging && o.verbose == 0 {
		log.SetLevel(logrus.InfoLevel)
	}
	r := project.Runner{
		Config:    cfg,
		Generator: o.generator(log),
		Logger:    log,
	}
	res, err := r.Run(cmd.Context(), root)
	if res == nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range res.Diagnostics {
		fmt.Fprintln(cmd.ErrOrStderr(), d)
	}
	for _, file := range res.Files {
		switch {
		case file.Output != "":
			fmt.Fprintf(out, "%s\t%s\n", rel(root, file.Output), file.Namespace)
		case file.Skipped:
			fmt.Fprintf(out, "%s\tskipped\n", rel(root, file.Schema))
		}
	}
	return err
}

func rel(root, path string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	if r, err := filepath.Rel(abs, path); err == nil {
		return r
	}
	return path
}

func newCompileCmd(o *options) *cobra.Command {
	var namespace, output string
	cmd := &cobra.Command{
		Use:   "compile schema",
		Short: "Generate Go source for a single schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			src, err := o.generator(o.logger(cmd)).Generate(string(data), namespace)
			if err != nil {
				return err
			}
			if src == "" {
				return fmt.Errorf("%s: schema produced no type declaration", args[0])
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), src)
				return err
			}
			return os.WriteFile(output, []byte(src), 0o666)
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "namespace of the generated types")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("namespace")
	o.addCompilerFlags(cmd)
	return cmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve base file",
		Short: "Print the namespace of the types generated from a schema file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), sourcegen.ResolveNamespace(args[0], args[1]))
			return err
		},
	}
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default " + project.ConfigFile + " to a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			path := filepath.Join(root, project.ConfigFile)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists", path)
			}
			cfg := project.DefaultConfig()
			cfg.BaseNamespace = project.BaseNamespace(root)
			if err := cfg.Save(path); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
	return cmd
}
